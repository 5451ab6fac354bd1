// tokenreport prints per-record and aggregate token statistics for a JSONL
// dataset, plus a max_tokens recommendation for fine-tuning setups.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"

	"obfuskeep/internal/dataset"
	"obfuskeep/internal/llm"
)

type recordStats struct {
	line        int
	total       int
	instruction int
	input       int
	output      int
}

func main() {
	top := flag.Int("top", 20, "number of largest records to list (0 = all)")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatal("usage: tokenreport [flags] <dataset.jsonl>")
	}
	path := flag.Arg(0)

	entries, err := dataset.ReadEntries(path)
	if err != nil {
		log.Fatal(err)
	}
	if len(entries) == 0 {
		log.Fatalf("no records in %s", path)
	}

	stats := make([]recordStats, 0, len(entries))
	for i, e := range entries {
		s := recordStats{
			line:        i + 1,
			instruction: llm.CountTokens(e.Instruction),
			input:       llm.CountTokens(e.Input),
			output:      llm.CountTokens(e.Output),
		}
		s.total = s.instruction + s.input + s.output
		stats = append(stats, s)
	}

	printReport(path, stats, *top)
}

func printReport(path string, stats []recordStats, top int) {
	n := len(stats)
	var sum, sumInstruction, sumInput, sumOutput int
	maxRec, minRec := stats[0], stats[0]
	for _, s := range stats {
		sum += s.total
		sumInstruction += s.instruction
		sumInput += s.input
		sumOutput += s.output
		if s.total > maxRec.total {
			maxRec = s
		}
		if s.total < minRec.total {
			minRec = s
		}
	}

	fmt.Printf("token report for %s\n\n", path)
	fmt.Printf("records:      %d\n", n)
	fmt.Printf("total tokens: %d\n", sum)
	fmt.Printf("average:      %.1f\n", float64(sum)/float64(n))
	fmt.Printf("max:          %d (record %d)\n", maxRec.total, maxRec.line)
	fmt.Printf("min:          %d (record %d)\n\n", minRec.total, minRec.line)

	fmt.Println("per-field averages:")
	fmt.Printf("  instruction: %.1f\n", float64(sumInstruction)/float64(n))
	fmt.Printf("  input:       %.1f\n", float64(sumInput)/float64(n))
	fmt.Printf("  output:      %.1f\n\n", float64(sumOutput)/float64(n))

	printHistogram(stats)

	sorted := make([]recordStats, n)
	copy(sorted, stats)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].total > sorted[j].total })
	if top <= 0 || top > n {
		top = n
	}
	fmt.Printf("\nlargest %d records:\n", top)
	fmt.Printf("%6s  %8s  %12s  %8s  %8s\n", "record", "total", "instruction", "input", "output")
	for _, s := range sorted[:top] {
		fmt.Printf("%6d  %8d  %12d  %8d  %8d\n", s.line, s.total, s.instruction, s.input, s.output)
	}

	totals := make([]int, n)
	for i, s := range stats {
		totals[i] = s.total
	}
	sort.Ints(totals)
	p99 := totals[min(n*99/100, n-1)]
	recommended := (maxRec.total + 511) / 512 * 512

	fmt.Println("\nsuggested limits:")
	fmt.Printf("  max_tokens (p99): %d\n", p99)
	fmt.Printf("  max_tokens (max): %d\n", maxRec.total)
	fmt.Printf("  recommended:      %d (rounded up to a 512 boundary)\n", recommended)

	switch {
	case maxRec.total > 16384:
		fmt.Println("\nwarning: largest record exceeds 16K tokens; a long-context model is required")
	case maxRec.total > 8192:
		fmt.Println("\nwarning: largest record exceeds 8K tokens; some models will truncate it")
	case maxRec.total > 4096:
		fmt.Println("\nwarning: largest record exceeds 4K tokens")
	}
}

// printHistogram renders a coarse distribution over fixed token ranges.
func printHistogram(stats []recordStats) {
	buckets := []struct {
		lo, hi int
		label  string
	}{
		{0, 1000, "0-1K"},
		{1000, 2000, "1K-2K"},
		{2000, 5000, "2K-5K"},
		{5000, 10000, "5K-10K"},
		{10000, 20000, "10K-20K"},
		{20000, 1 << 31, "20K+"},
	}

	fmt.Println("distribution:")
	for _, b := range buckets {
		count := 0
		for _, s := range stats {
			if s.total >= b.lo && s.total < b.hi {
				count++
			}
		}
		if count == 0 {
			continue
		}
		pct := float64(count) / float64(len(stats)) * 100
		fmt.Printf("  %8s: %4d (%5.1f%%) %s\n", b.label, count, pct, strings.Repeat("#", int(pct/2)))
	}
}
