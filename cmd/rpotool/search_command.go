package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/rpotool/internal/catalog"
)

// assetFilter selects catalog assets. At most one field is used; Term is
// the fallback free-text search.
type assetFilter struct {
	Set       string
	Decorator string
	ShellType string
	Chicken   string
	Term      string
}

func (f *assetFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Set, "set", "", "Shells in the set with this name or ID")
	cmd.Flags().StringVar(&f.Decorator, "decorator", "", "Shells in the decorator with this name or ID")
	cmd.Flags().StringVar(&f.ShellType, "type", "", "Shells of this building type, e.g. SILO")
	cmd.Flags().StringVar(&f.Chicken, "chicken", "", "Pieces of this chicken type")
	cmd.MarkFlagsMutuallyExclusive("set", "decorator", "type", "chicken")
}

func (f *assetFilter) empty() bool {
	return f.Set == "" && f.Decorator == "" && f.ShellType == "" && f.Chicken == "" && f.Term == ""
}

func (f *assetFilter) apply(cat *catalog.Catalog) []catalog.Asset {
	switch {
	case f.Set != "":
		return cat.ShellsInSet(f.Set)
	case f.Decorator != "":
		return cat.ShellsInDecorator(f.Decorator)
	case f.ShellType != "":
		return cat.ShellsOfType(f.ShellType)
	case f.Chicken != "":
		return cat.ChickensOfType(f.Chicken)
	default:
		return cat.Search(f.Term)
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var filter assetFilter

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the DLC catalog for shells and chickens",
		Long: `Search the DLC catalog. With no term or filter, lists the sets,
decorators and types that can be used as filters.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				filter.Term = args[0]
			}

			cat, err := ctx.fetcher(cfg).Catalog(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if filter.empty() {
				printCatalogOverview(out, cat)
				return nil
			}

			assets := filter.apply(cat)
			if len(assets) == 0 {
				return errors.New("no assets match")
			}
			printAssets(out, assets)
			return nil
		},
	}

	filter.register(cmd)
	return cmd
}

func printAssets(out io.Writer, assets []catalog.Asset) {
	rows := make([][]string, len(assets))
	for i, a := range assets {
		rows[i] = []string{strconv.Itoa(i + 1), a.Kind.String(), a.Group, a.Type, a.Key}
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Kind", "Name", "Type", "File"},
		rows,
		[]columnAlignment{alignRight},
		shouldColorize(out),
	))
	fmt.Fprintf(out, "%d assets\n", len(assets))
}

func printCatalogOverview(out io.Writer, cat *catalog.Catalog) {
	color := shouldColorize(out)
	fmt.Fprintf(out, "Found %s.\n", cat.Stats())

	groups := func(title string, sets []catalog.Set) {
		if len(sets) == 0 {
			return
		}
		rows := make([][]string, len(sets))
		for i, s := range sets {
			rows[i] = []string{s.ID, s.Name}
		}
		fmt.Fprintln(out, renderTable([]string{title, "Name"}, rows, nil, color))
	}
	groups("Set", cat.Sets)
	groups("Decorator", cat.Decorators)

	types := func(title string, names []string) {
		if len(names) == 0 {
			return
		}
		fmt.Fprintf(out, "%s: %s\n", title, strings.Join(names, ", "))
	}
	types("Building types", cat.ShellTypes)
	types("Chicken types", cat.ChickenTypes)
}
