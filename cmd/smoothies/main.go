package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"smoothies/internal/app"
	"smoothies/internal/canon"
	"smoothies/internal/catalog"
	"smoothies/internal/config"
	"smoothies/internal/orders"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	a, err := app.Open(cfg)
	must(err)
	defer a.Close()

	ctx := context.Background()
	cmd := os.Args[1]
	switch cmd {
	case "catalog:bootstrap":
		res, err := catalog.NewBootstrapService(a.DB).Bootstrap(catalog.DefaultSearchTerms)
		must(err)
		fmt.Printf("catalog bootstrap done seeded=%d filled=%d overrides=%d\n", res.Seeded, res.Filled, res.Overrides)
	case "catalog:list":
		opts, err := a.Catalog.Options()
		must(err)
		for _, o := range opts {
			fmt.Printf("%d\t%s\t%s\n", o.Position, o.Label, o.ResolvedSearchTerm())
		}
	case "catalog:set-search":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		label := fs.String("label", "", "fruit label")
		term := fs.String("term", "", "nutrition api search term")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*label) == "" || strings.TrimSpace(*term) == "" {
			must(fmt.Errorf("--label and --term are required"))
		}
		must(a.Catalog.SetSearchTerm(*label, *term))
		fmt.Printf("search term set label=%q term=%q\n", *label, *term)
	case "canon":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		labels := fs.String("labels", "", "comma-separated fruit labels")
		ruleName := fs.String("rule", "", "PLAIN|NBSP_INSIDE_LABELS|ALL_NBSP|COMMA_SPACE|DOUBLE_SPACE|TRAILING_SPACE|LEADING_SPACE")
		_ = fs.Parse(os.Args[2:])
		selection := splitLabels(*labels)
		must(a.Orders.ValidateSelection(selection))
		if strings.TrimSpace(*ruleName) != "" {
			rule, err := canon.ParseRule(*ruleName)
			must(err)
			v, err := a.Canon.Canonicalize(ctx, selection, rule)
			if errors.Is(err, canon.ErrMetadataUnavailable) {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			} else {
				must(err)
			}
			printJSON(v)
			return
		}
		variants, err := a.Canon.Variants(ctx, selection)
		must(err)
		printJSON(variants)
	case "canon:match":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		labels := fs.String("labels", "", "comma-separated fruit labels")
		target := fs.String("target", "", "signed 64-bit target hash")
		_ = fs.Parse(os.Args[2:])
		selection := splitLabels(*labels)
		must(a.Orders.ValidateSelection(selection))
		targetHash, err := parseHash(*target)
		must(err)
		v, err := a.Canon.FindMatchingVariant(ctx, selection, targetHash)
		if canon.IsNotFound(err) {
			fmt.Printf("no variant matches target=%d\n", targetHash)
			os.Exit(2)
		}
		must(err)
		printJSON(v)
	case "nutrition":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		labels := fs.String("labels", "", "comma-separated fruit labels")
		_ = fs.Parse(os.Args[2:])
		selection := splitLabels(*labels)
		must(a.Orders.ValidateSelection(selection))
		results, err := a.Orders.Lookup(ctx, selection)
		must(err)
		printJSON(results)
	case "order:submit":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "name on order")
		labels := fs.String("labels", "", "comma-separated fruit labels")
		ruleName := fs.String("rule", "", "force a canonicalization rule")
		target := fs.String("target", "", "target hash to match")
		skip := fs.Bool("skip-nutrition", false, "do not call the nutrition api")
		_ = fs.Parse(os.Args[2:])
		req := orders.OrderRequest{Name: *name, Labels: splitLabels(*labels), SkipNutrition: *skip}
		if strings.TrimSpace(*ruleName) != "" && strings.TrimSpace(*target) != "" {
			must(fmt.Errorf("--rule and --target are mutually exclusive"))
		}
		if strings.TrimSpace(*ruleName) != "" {
			rule, err := canon.ParseRule(*ruleName)
			must(err)
			req.Rule = &rule
		}
		if strings.TrimSpace(*target) != "" {
			h, err := parseHash(*target)
			must(err)
			req.TargetHash = &h
		}
		res, err := a.Orders.Submit(ctx, req)
		must(err)
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		fmt.Printf("order submitted id=%d rule=%s bytes=%d\n", res.Order.ID, res.Order.Rule, res.Order.ByteLength)
	case "orders:export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		limit := fs.Int("limit", 0, "max orders (0 = all)")
		_ = fs.Parse(os.Args[2:])
		path := strings.TrimSpace(*out)
		if path == "" {
			path = filepath.Join(cfg.OutputDir, "orders.xlsx")
		}
		rows, err := a.DB.ListOrders(*limit)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no orders to export"))
		}
		must(orders.ExportOrdersToXLSX(rows, path))
		fmt.Printf("exported %d orders to %s\n", len(rows), path)
	default:
		usage()
		os.Exit(1)
	}
}

func splitLabels(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func parseHash(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("--target is required")
	}
	h, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --target %q: %w", raw, err)
	}
	return h, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	must(enc.Encode(v))
}

func usage() {
	fmt.Println("usage: smoothies <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:bootstrap")
	fmt.Println("  catalog:list")
	fmt.Println("  catalog:set-search --label=Apple --term=Apples")
	fmt.Println("  canon --labels=\"Dragon Fruit,Mango\" [--rule=COMMA_SPACE]")
	fmt.Println("  canon:match --labels=\"Dragon Fruit,Mango\" --target=-123456789")
	fmt.Println("  nutrition --labels=Apple,Kiwi")
	fmt.Println("  order:submit --name=Kevin --labels=Apple,Kiwi [--rule=...|--target=...] [--skip-nutrition]")
	fmt.Println("  orders:export [--out=./out/orders.xlsx] [--limit=0]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
