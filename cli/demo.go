package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"schema-generator/internal/generator"
)

// DemoRequirements are the business requirements offered by the demo
var DemoRequirements = []string{
	"Track patients, doctors, and medical appointments with patient history",
	"Manage a library system with books, members, authors, and borrowing records",
	"Handle e-commerce orders with customers, products, inventory, and shipping",
	"Track employees, departments, projects, and work assignments",
	"Manage university courses, students, professors, and enrollments",
}

// SelectDemoRequirement lists the demo requirements and reads a choice from
// in. Empty or invalid input selects the first one.
func SelectDemoRequirement(in io.Reader, out io.Writer) string {
	fmt.Fprintln(out, "\n📋 Demo requirements:")
	for i, requirement := range DemoRequirements {
		fmt.Fprintf(out, "   %d. %s\n", i+1, requirement)
	}
	fmt.Fprintf(out, "\nSelect a requirement (1-%d) or press Enter for #1: ", len(DemoRequirements))

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return DemoRequirements[0]
	}
	return demoRequirement(strings.TrimSpace(scanner.Text()))
}

func demoRequirement(choice string) string {
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(DemoRequirements) {
		return DemoRequirements[0]
	}
	return DemoRequirements[n-1]
}

// RunDemo generates the full report for one requirement and closes with the
// extensibility banner
func RunDemo(ctx context.Context, out io.Writer, runner Runner, requirement string, timeout time.Duration) error {
	fmt.Fprintln(out, "🏥 Natural Language to Database Schema Generator")
	fmt.Fprintln(out, strings.Repeat("=", wideRule))

	fmt.Fprintf(out, "\n🔄 Processing: %s\n", requirement)
	fmt.Fprintln(out, "   This may take 15-30 seconds...")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := runner.Run(ctx, requirement, generator.RunOptions{})
	if err != nil {
		fmt.Fprintf(out, "\n❌ Error running demo: %v\n", err)
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "1. Make sure OPENAI_API_KEY is set or llm.api_key is configured")
		fmt.Fprintln(out, "2. Verify the API key has access to the configured model")
		fmt.Fprintln(out, "3. Check your internet connection")
		return err
	}

	PrintResults(out, result)
	printExtensibility(out)
	return nil
}
