// ABOUTME: This file parses Letterboxd export CSVs (watched.csv / ratings.csv)
// ABOUTME: Rows are matched by header name and deduplicated by (title, year), first seen wins
package letterboxd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cienaga/domain"
)

// ImportedFilm is one row of a user's export.
type ImportedFilm struct {
	Title  string
	Year   *int
	URL    string
	Rating *float64
}

// ImportCSV parses one or two export files (watched, ratings) and returns
// the films deduplicated by (title, year) across both, first seen wins.
// Returns ErrInvalidInput when no file is given or a file has no usable
// header row.
func ImportCSV(files ...io.Reader) ([]ImportedFilm, error) {
	present := files[:0]
	for _, f := range files {
		if f != nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("%w: no export file provided", domain.ErrInvalidInput)
	}

	var films []ImportedFilm
	seen := make(map[string]bool)

	for _, file := range present {
		parsed, err := parseExportFile(file)
		if err != nil {
			return nil, err
		}

		for _, film := range parsed {
			year := 0
			if film.Year != nil {
				year = *film.Year
			}
			key := fmt.Sprintf("%s|%d", domain.Normalize(film.Title), year)
			if seen[key] {
				continue
			}
			seen[key] = true
			films = append(films, film)
		}
	}

	return films, nil
}

func parseExportFile(file io.Reader) ([]ImportedFilm, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrInvalidInput)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	nameCol, ok := columns["Name"]
	if !ok {
		return nil, fmt.Errorf("%w: header has no Name column", domain.ErrInvalidInput)
	}
	yearCol, hasYear := columns["Year"]
	uriCol, hasURI := columns["Letterboxd URI"]
	ratingCol, hasRating := columns["Rating"]

	var films []ImportedFilm

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Ragged rows are tolerated; anything else is a malformed file.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}

		title := strings.TrimSpace(field(record, nameCol))
		if title == "" {
			continue
		}

		film := ImportedFilm{Title: title}

		if hasURI {
			film.URL = strings.TrimSpace(field(record, uriCol))
		}
		if hasYear {
			if year, err := strconv.Atoi(strings.TrimSpace(field(record, yearCol))); err == nil {
				film.Year = &year
			}
		}
		if hasRating {
			if rating, err := strconv.ParseFloat(strings.TrimSpace(field(record, ratingCol)), 64); err == nil {
				film.Rating = &rating
			}
		}

		films = append(films, film)
	}

	return films, nil
}

func field(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return record[index]
}
