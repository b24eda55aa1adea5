package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/whpcodes/whpcodes/config"
	"github.com/whpcodes/whpcodes/models"
	"github.com/whpcodes/whpcodes/utils"
)

const lockPath = "/tmp/whpctl.lock"

func usage() {
	fmt.Fprintf(os.Stderr, `whpctl - maintenance jobs

Usage:
  whpctl import-codes -file codes.csv [-dry-run] [-threshold 0.82]
  whpctl expire-codes
  whpctl sync-seo
  whpctl fix-links [-dry-run]

Every run takes a lock at %s so concurrent batch jobs are excluded.
`, lockPath)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	db := config.InitDatabase()

	var run func() error
	switch os.Args[1] {
	case "import-codes":
		fs := flag.NewFlagSet("import-codes", flag.ExitOnError)
		file := fs.String("file", "", "CSV file: whop_name,code,title,discount_type,discount_value,expires_at")
		dryRun := fs.Bool("dry-run", false, "match and report without writing")
		threshold := fs.Float64("threshold", utils.DefaultFuzzyThreshold, "fuzzy name match threshold (0..1)")
		_ = fs.Parse(os.Args[2:])
		if *file == "" {
			fs.Usage()
			os.Exit(2)
		}
		run = func() error { return importCodes(db, *file, *dryRun, *threshold) }
	case "expire-codes":
		run = func() error { return expireCodes(db) }
	case "sync-seo":
		run = func() error { return syncSEO(db) }
	case "fix-links":
		fs := flag.NewFlagSet("fix-links", flag.ExitOnError)
		dryRun := fs.Bool("dry-run", false, "report rewrites without writing")
		_ = fs.Parse(os.Args[2:])
		run = func() error { return fixLinks(db, *dryRun) }
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err := utils.WithFileLock(lockPath, run); err != nil {
		utils.Sugar.Errorf("%s failed: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func importCodes(db *gorm.DB, path string, dryRun bool, threshold float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := utils.ImportCodesCSV(db, f, dryRun, threshold)
	if err != nil {
		return err
	}

	for _, m := range report.Matches {
		switch {
		case m.Reason != "":
			fmt.Printf("line %-4d %-40q SKIP: %s\n", m.Line, m.WhopName, m.Reason)
		case m.Score < 1:
			fmt.Printf("line %-4d %-40q -> %q (fuzzy %.2f) code=%s\n", m.Line, m.WhopName, m.Matched, m.Score, m.Code)
		default:
			fmt.Printf("line %-4d %-40q -> %q code=%s\n", m.Line, m.WhopName, m.Matched, m.Code)
		}
	}
	mode := "imported"
	if dryRun {
		mode = "would import"
	}
	fmt.Printf("%d rows: %s %d, duplicates %d, unmatched %d, invalid %d\n",
		report.Rows, mode, report.Created, report.Duplicates, report.Unmatched, report.Invalid)
	return nil
}

func expireCodes(db *gorm.DB) error {
	res := db.Model(&models.PromoCode{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.CodeStatusActive, time.Now()).
		Update("status", models.CodeStatusExpired)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		utils.InvalidateByPrefix("cache:whops:")
		utils.InvalidateByPrefix("cache:whop:detail:")
	}
	fmt.Printf("expired %d codes\n", res.RowsAffected)
	return nil
}

// syncSEO recomputes Indexable: retired listings and listings without any
// active code drop out of the sitemap, everything else comes back in.
func syncSEO(db *gorm.DB) error {
	var whops []models.Whop
	if err := db.Find(&whops).Error; err != nil {
		return err
	}

	changed := 0
	for _, w := range whops {
		var activeCodes int64
		if err := db.Model(&models.PromoCode{}).
			Where("whop_id = ? AND status = ?", w.ID, models.CodeStatusActive).
			Count(&activeCodes).Error; err != nil {
			return err
		}

		indexable := !w.Retired && activeCodes > 0
		if indexable == w.Indexable {
			continue
		}
		if err := db.Model(&models.Whop{}).Where("id = ?", w.ID).Update("indexable", indexable).Error; err != nil {
			return err
		}
		changed++
		fmt.Printf("%-40s indexable %v -> %v (active codes %d, retired %v)\n",
			w.Slug, w.Indexable, indexable, activeCodes, w.Retired)
	}

	if changed > 0 {
		utils.InvalidateByPrefix("cache:sitemap:")
		utils.InvalidateByPrefix("cache:whops:")
	}
	fmt.Printf("synced %d of %d listings\n", changed, len(whops))
	return nil
}

// fixLinks normalizes affiliate URLs: https scheme, no tracking params.
func fixLinks(db *gorm.DB, dryRun bool) error {
	var whops []models.Whop
	if err := db.Where("affiliate_url <> ''").Find(&whops).Error; err != nil {
		return err
	}

	rewritten := 0
	for _, w := range whops {
		fixed, err := normalizeAffiliateURL(w.AffiliateURL)
		if err != nil {
			fmt.Printf("%-40s BROKEN: %v (%s)\n", w.Slug, err, w.AffiliateURL)
			continue
		}
		if fixed == w.AffiliateURL {
			continue
		}
		fmt.Printf("%-40s %s -> %s\n", w.Slug, w.AffiliateURL, fixed)
		if !dryRun {
			if err := db.Model(&models.Whop{}).Where("id = ?", w.ID).Update("affiliate_url", fixed).Error; err != nil {
				return err
			}
		}
		rewritten++
	}

	if rewritten > 0 && !dryRun {
		utils.InvalidateByPrefix("cache:whop:detail:")
	}
	mode := "rewrote"
	if dryRun {
		mode = "would rewrite"
	}
	fmt.Printf("%s %d of %d links\n", mode, rewritten, len(whops))
	return nil
}

// trackingParams are query keys stripped from affiliate URLs; our own
// attribution survives in the path or the remaining params.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "msclkid", "mc_eid",
}

func normalizeAffiliateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	if u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %s", u.Scheme)
	}

	q := u.Query()
	for _, k := range trackingParams {
		q.Del(k)
	}
	u.RawQuery = q.Encode()
	u.Host = strings.ToLower(u.Host)

	return u.String(), nil
}
