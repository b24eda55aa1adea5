package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/models"
)

// ImportMatch records how one CSV row was resolved to a listing.
type ImportMatch struct {
	Line     int     `json:"line"`
	WhopName string  `json:"whop_name"`
	Matched  string  `json:"matched"`
	Score    float64 `json:"score"`
	Code     string  `json:"code"`
	Created  bool    `json:"created"`
	Reason   string  `json:"reason,omitempty"`
}

// ImportReport summarizes a bulk promo code import run.
type ImportReport struct {
	Rows       int           `json:"rows"`
	Created    int           `json:"created"`
	Duplicates int           `json:"duplicates"`
	Unmatched  int           `json:"unmatched"`
	Invalid    int           `json:"invalid"`
	DryRun     bool          `json:"dry_run"`
	Matches    []ImportMatch `json:"matches"`
}

// ImportCodesCSV ingests promo codes from CSV rows of the form
// whop_name,code,title,discount_type,discount_value,expires_at.
// Rows are matched to listings by exact slug or name first, then by fuzzy
// name similarity above threshold. With dryRun nothing is written.
func ImportCodesCSV(db *gorm.DB, r io.Reader, dryRun bool, threshold float64) (*ImportReport, error) {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}

	var whops []models.Whop
	if err := db.Select("id", "name", "slug").Find(&whops).Error; err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	names := make([]string, len(whops))
	bySlug := make(map[string]int, len(whops))
	for i, w := range whops {
		names[i] = w.Name
		bySlug[w.Slug] = i
	}

	report := &ImportReport{DryRun: dryRun}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		// Tolerate a header row.
		if line == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "whop_name") {
			continue
		}
		if len(record) < 2 {
			report.Invalid++
			report.Matches = append(report.Matches, ImportMatch{Line: line, Reason: "too few columns"})
			continue
		}
		report.Rows++

		whopName := strings.TrimSpace(record[0])
		code := strings.ToUpper(strings.TrimSpace(record[1]))
		match := ImportMatch{Line: line, WhopName: whopName, Code: code}

		if whopName == "" || code == "" {
			report.Invalid++
			match.Reason = "empty whop name or code"
			report.Matches = append(report.Matches, match)
			continue
		}

		idx, score := matchWhop(whopName, names, bySlug, threshold)
		if idx < 0 {
			report.Unmatched++
			match.Score = score
			match.Reason = "no listing matched"
			report.Matches = append(report.Matches, match)
			continue
		}
		target := whops[idx]
		match.Matched = target.Name
		match.Score = score

		promo := models.PromoCode{
			WhopID:       target.ID,
			Code:         code,
			Status:       models.CodeStatusActive,
			Source:       models.CodeSourceImport,
			DiscountType: models.DiscountPercent,
		}
		if len(record) > 2 {
			promo.Title = strings.TrimSpace(record[2])
		}
		if len(record) > 3 {
			if t := strings.TrimSpace(record[3]); t != "" {
				if !models.ValidDiscountType(t) {
					report.Invalid++
					match.Reason = "invalid discount type " + t
					report.Matches = append(report.Matches, match)
					continue
				}
				promo.DiscountType = t
			}
		}
		if len(record) > 4 {
			if v := strings.TrimSpace(record[4]); v != "" {
				d, err := decimal.NewFromString(v)
				if err != nil {
					report.Invalid++
					match.Reason = "invalid discount value " + v
					report.Matches = append(report.Matches, match)
					continue
				}
				promo.DiscountValue = d
			}
		}
		if len(record) > 5 {
			if v := strings.TrimSpace(record[5]); v != "" {
				t, err := parseImportTime(v)
				if err != nil {
					report.Invalid++
					match.Reason = "invalid expires_at " + v
					report.Matches = append(report.Matches, match)
					continue
				}
				promo.ExpiresAt = &t
			}
		}

		var dup int64
		if err := db.Model(&models.PromoCode{}).
			Where("whop_id = ? AND code = ?", target.ID, code).Count(&dup).Error; err != nil {
			return nil, fmt.Errorf("line %d: duplicate check: %w", line, err)
		}
		if dup > 0 {
			report.Duplicates++
			match.Reason = "code already exists"
			report.Matches = append(report.Matches, match)
			continue
		}

		if !dryRun {
			if err := db.Create(&promo).Error; err != nil {
				return nil, fmt.Errorf("line %d: create code: %w", line, err)
			}
		}
		report.Created++
		match.Created = !dryRun
		report.Matches = append(report.Matches, match)
	}

	if report.Created > 0 && !dryRun {
		InvalidateByPrefix("cache:whops:")
		InvalidateByPrefix("cache:whop:detail:")
	}
	return report, nil
}

func matchWhop(name string, names []string, bySlug map[string]int, threshold float64) (int, float64) {
	if idx, ok := bySlug[Slugify(name)]; ok {
		return idx, 1
	}
	norm := NormalizeName(name)
	for i, n := range names {
		if NormalizeName(n) == norm {
			return i, 1
		}
	}
	return BestNameMatch(name, names, threshold)
}

func parseImportTime(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}
