package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"openreview-ratings/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// maxSheetNameLength is the longest tab title Google Sheets accepts
const maxSheetNameLength = 100

// Writer exports ratings to Google Sheets
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewWriter creates a new Google Sheets writer. Credentials are read from
// credentialsPath, or from the credentialsEnv environment variable when no
// path is given.
func NewWriter(ctx context.Context, spreadsheetID, credentialsPath, credentialsEnv string) (*Writer, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is empty")
	}

	credsJSON, err := loadCredentials(credentialsPath, credentialsEnv)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

func loadCredentials(credentialsPath, credentialsEnv string) ([]byte, error) {
	var credsJSON []byte

	if credentialsPath != "" {
		data, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		credsJSON = data
	} else {
		if credentialsEnv == "" {
			return nil, fmt.Errorf("credentials not found: no credentials file or environment variable configured")
		}
		// Trim whitespace and newlines that might be in the environment variable
		credsEnv := strings.TrimSpace(os.Getenv(credentialsEnv))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: %s environment variable is empty or not set", credentialsEnv)
		}
		log.Printf("Reading credentials from %s environment variable (%d bytes)\n", credentialsEnv, len(credsEnv))
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON (check if JSON is properly formatted): %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	return credsJSON, nil
}

// CreateSheetAndWriteRatings creates a new tab at the beginning of the
// spreadsheet and writes the ratings and summary lines to it.
// Returns the sheet name and sheet ID (gid) that was created.
func (w *Writer) CreateSheetAndWriteRatings(ctx context.Context, sheetName, listingURL string, ratings models.Ratings, summary []string) (string, int64, error) {
	sheetName = sanitizeSheetName(sheetName)

	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: sheetName,
						Index: 0,
					},
				},
			},
		},
	}

	batchUpdateResp, err := w.service.Spreadsheets.BatchUpdate(w.spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	var sheetID int64
	if len(batchUpdateResp.Replies) > 0 && batchUpdateResp.Replies[0].AddSheet != nil {
		sheetID = batchUpdateResp.Replies[0].AddSheet.Properties.SheetId
	}

	log.Printf("Created sheet '%s' with ID %d\n", sheetName, sheetID)

	valueRange := &sheets.ValueRange{
		Values: BuildRows(listingURL, ratings, summary),
	}

	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, sheetRange(sheetName), valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to write to sheet: %w", err)
	}

	log.Printf("Successfully wrote %d papers to sheet '%s'\n", len(ratings), sheetName)
	return sheetName, sheetID, nil
}

// BuildRows lays out the sheet: a metadata row, a header, one row per paper
// sorted by URL, then a blank row and the summary lines.
func BuildRows(listingURL string, ratings models.Ratings, summary []string) [][]interface{} {
	var values [][]interface{}

	if listingURL != "" {
		values = append(values, []interface{}{"URL", listingURL})
	}

	values = append(values, []interface{}{"Paper", "Average Rating", "Ratings"})

	urls := make([]models.PaperURL, 0, len(ratings))
	for u := range ratings {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool { return urls[i] < urls[j] })

	for _, u := range urls {
		rec := ratings[u]
		row := []interface{}{string(u), models.FormatRating(rec.AverageRating)}
		for _, s := range rec.Ratings {
			if s.Found {
				row = append(row, s.Value)
			} else {
				row = append(row, "")
			}
		}
		values = append(values, row)
	}

	if len(summary) > 0 {
		values = append(values, []interface{}{})
		for _, line := range summary {
			values = append(values, []interface{}{line})
		}
	}

	return values
}

// SheetURL returns a link that opens the given tab of the spreadsheet
func (w *Writer) SheetURL(sheetID int64) string {
	return SheetURL(w.spreadsheetID, sheetID)
}

// SheetURL builds https://docs.google.com/spreadsheets/d/ID/edit#gid=SHEET_ID
func SheetURL(spreadsheetID string, sheetID int64) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", spreadsheetID, sheetID)
}

// SheetName returns the tab title for a run of venue started at t
func SheetName(venueName string, t time.Time) string {
	return sanitizeSheetName(fmt.Sprintf("%s_%s", venueName, t.Format("2006-01-02_15-04")))
}

func sheetRange(sheetName string) string {
	return fmt.Sprintf("'%s'!A1", strings.ReplaceAll(sheetName, "'", "''"))
}

// sanitizeSheetName removes invalid characters from sheet name
func sanitizeSheetName(name string) string {
	// Google Sheets sheet names cannot contain: / \ ? * [ ] :
	invalidChars := []string{"/", "\\", "?", "*", "[", "]", ":"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	if runes := []rune(result); len(runes) > maxSheetNameLength {
		result = string(runes[:maxSheetNameLength])
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL.
// A bare ID is returned unchanged.
func ExtractSpreadsheetID(url string) string {
	// https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		if strings.Contains(url, "/") {
			return ""
		}
		return strings.TrimSpace(url)
	}

	idPart := parts[1]
	if idx := strings.IndexAny(idPart, "/?#"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}
