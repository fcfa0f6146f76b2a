package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/utils"
)

func main() {
	dir := flag.String("dir", "data", "directory holding journal CSV files")
	balance := flag.Float64("balance", 10000, "starting balance for drawdown and ROI")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		var err error
		files, err = findJournalFiles(*dir)
		if err != nil {
			log.Fatalf("Error finding journal files: %v", err)
		}
	}
	if len(files) == 0 {
		log.Println("No journal files found. Export one with import_trades -export.")
		return
	}

	// Create a tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tTrades\tClosed\tWinRate\tAvgWin\tAvgLoss\tTotalPnL\tMaxDD\tPF\t")

	summaries := make(map[string]fileSummary, len(files))
	for _, file := range files {
		s, err := summarizeFile(file, *balance)
		if err != nil {
			log.Printf("Error reading trades from %s: %v", file, err)
			continue
		}
		summaries[file] = s
		p := s.Performance
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%s\t%s\t%s\t%.2f\t%.2f\t\n",
			filepath.Base(file),
			s.Trades,
			p.TotalTrades,
			p.WinRate*100,
			utils.FormatFixed(p.AverageWin, 2),
			utils.FormatFixed(p.AverageLoss, 2),
			utils.FormatFixed(p.TotalProfit, 2),
			p.MaxDrawdown*100,
			p.ProfitFactor,
		)
	}
	w.Flush()

	fmt.Println("\n## Tag Breakdown")
	for _, file := range files {
		s, ok := summaries[file]
		if !ok {
			continue
		}
		fmt.Printf("\n### %s\n", filepath.Base(file))
		if err := utils.WriteTagSummaryCSV(os.Stdout, s.Tags); err != nil {
			log.Printf("Error writing tag summary for %s: %v", file, err)
		}
	}
}

// fileSummary holds the analysis of one journal file.
type fileSummary struct {
	Trades      int
	Performance *analytics.PerformanceMetrics
	Tags        map[string]analytics.TagMetrics
}

func summarizeFile(path string, balance float64) (fileSummary, error) {
	trades, err := utils.ReadTradesFromCSV(path)
	if err != nil {
		return fileSummary{}, err
	}
	return fileSummary{
		Trades:      len(trades),
		Performance: analytics.AnalyzePerformance(trades, balance),
		Tags:        analytics.AggregateByTag(trades),
	}, nil
}

// findJournalFiles finds all CSV files in the specified directory, sorted by name.
func findJournalFiles(dir string) ([]string, error) {
	var files []string

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
