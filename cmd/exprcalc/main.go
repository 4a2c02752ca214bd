package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jessevdk/go-flags"
	"github.com/karupanerura/exprcalc/internal/expression"
	"github.com/karupanerura/exprcalc/internal/server"
	"github.com/karupanerura/exprcalc/internal/suite"
	"github.com/karupanerura/exprcalc/internal/types"
	"github.com/mattn/go-isatty"
)

type Option struct {
	Expr        string `short:"e" long:"expr" description:"[OPTIONAL] Expression to evaluate once" required:"false"`
	File        string `short:"f" long:"file" description:"[OPTIONAL] Expression suite file (JSON or YAML)" required:"false"`
	Listen      string `short:"l" long:"listen" description:"[OPTIONAL] Listen host and port to serve the evaluations API" required:"false"`
	Parallelism int    `short:"j" long:"parallelism" description:"[OPTIONAL] Max concurrent suite evaluations" default:"4"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	_, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		} else {
			parser.WriteHelp(os.Stdout)
			return 1
		}
	}

	modes := 0
	for _, mode := range []string{opt.Expr, opt.File, opt.Listen} {
		if mode != "" {
			modes++
		}
	}
	if modes > 1 {
		parser.WriteHelp(os.Stdout)
		return 1
	}

	switch {
	// server mode
	case opt.Listen != "":
		log.Printf("listening on %s", opt.Listen)
		if err := http.ListenAndServe(opt.Listen, server.NewHTTPHandler()); err != nil {
			log.Printf("failed to serve evaluations API: %v", err)
			return 1
		}
		return 0

	// suite mode
	case opt.File != "":
		return runSuite(opt.File, opt.Parallelism)

	// one-shot mode
	case opt.Expr != "":
		return evaluateLine(opt.Expr)

	// read-evaluate-print loop on stdin
	default:
		return runREPL()
	}
}

func runSuite(filePath string, parallelism int) int {
	s, err := loadSuite(filePath)
	if err != nil {
		log.Printf("failed to load suite: %v", err)
		return 1
	}

	results := s.Run(parallelism)
	if err := dumpJSON(os.Stdout, map[string]any{"name": s.Name, "results": results}); err != nil {
		log.Printf("failed to dump suite results: %v", err)
		return 1
	}
	if !suite.AllPassed(results) {
		return 1
	}
	return 0
}

func loadSuite(filePath string) (*suite.Suite, error) {
	var parseSuite func(io.Reader) (*suite.Suite, error)
	switch filepath.Ext(filePath) {
	case ".json":
		parseSuite = suite.ParseSuiteJSON
	case ".yaml", ".yml":
		parseSuite = suite.ParseSuiteYAML
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%q): %w", filePath, err)
	}
	defer f.Close()

	s, err := parseSuite(f)
	if err != nil {
		return nil, fmt.Errorf("suite.ParseSuite: %w", err)
	}
	return s, nil
}

func evaluateLine(source string) int {
	ret, err := expression.EvaluateString(source)
	if err != nil {
		var exception types.Exception
		if errors.As(err, &exception) {
			if _, err = fmt.Fprintln(os.Stderr, exception.Error()); err != nil {
				log.Printf("failed to dump evaluation error: %v", err)
			}
			if err = dumpJSON(os.Stderr, exception.Exception()); err != nil {
				log.Printf("failed to dump evaluation error as JSON: %v", err)
			}
		} else {
			log.Printf("failed to evaluate expression: %v", err)
		}
		return 1
	}

	fmt.Println(strconv.FormatFloat(ret, 'g', -1, 64))
	return 0
}

func runREPL() int {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())

	code := 0
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if interactive && (line == "exit" || line == "quit") {
			break
		}
		if evaluateLine(line) != 0 {
			code = 1
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("failed to read stdin: %v", err)
		return 1
	}
	if interactive {
		// interactive sessions do not fail on bad input lines
		return 0
	}
	return code
}

func dumpJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
