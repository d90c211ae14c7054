package cmd

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/SofiSoft/sofisoft-admin/internal/adapter/outbound/cel"
	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
	"github.com/SofiSoft/sofisoft-admin/internal/domain/fetch"
	"github.com/SofiSoft/sofisoft-admin/internal/service"
)

// ErrNotSignedIn is returned by screen commands while no user is stored.
var ErrNotSignedIn = errors.New("not signed in: run `sofisoft login` first")

// screenCommands maps command names to screens. The profile screen is exposed as param.
var screenCommands = []struct {
	use   string
	short string
	long  string
	sc    service.Screen
}{
	{"dashboard", "Sales dashboard for a period", `Figures, evolution and best sales for a period. Store-level sections
need --magasin-id; the day summary needs --day.

Example:
  sofisoft dashboard --date-start 2024-01-01 --date-end 2024-01-31 --magasin-id 5`, service.DashboardScreen},
	{"stores", "Store list and figures", `List the stores known to the backend and their figures for a period.`, service.StoresScreen},
	{"stock", "Stock by product and global stock", `Stock lookups. --filter is one of ALL, ZERO, GT_ZERO, LT_ZERO.

Example:
  sofisoft stock --product-code P1 --magasin-id 5`, service.StockScreen},
	{"compare", "Compare stores or periods", `Compare a comma-separated list of stores over a period, or one store over
two periods.

Example:
  sofisoft compare --magasin-ids 1,2,3 --date-start 2024-01-01 --date-end 2024-01-31`, service.CompareScreen},
	{"param", "Read a server parameter module", `Read a server parameter module (default ANDROID_UPDATE_APP).`, service.ProfileScreen},
}

type needView struct {
	Status fetch.Status `json:"status"`
	Data   api.Payload  `json:"data"`
	Error  string       `json:"error,omitempty"`
}

type screenView struct {
	Screen  string              `json:"screen"`
	Filters service.Filters     `json:"filters"`
	Needs   map[string]needView `json:"needs"`
}

// flagName converts a field name to its flag: magasinId becomes magasin-id.
func flagName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newScreenCommand(use, short, long string, sc service.Screen) *cobra.Command {
	values := make(map[string]*string, len(sc.Fields))
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := make(service.Filters, len(values))
			for field, v := range values {
				if *v != "" {
					f[field] = *v
				}
			}
			if !api.StockFilter(f["filter"]).Valid() {
				return fmt.Errorf("invalid --filter %q: want ALL, ZERO, GT_ZERO or LT_ZERO", f["filter"])
			}
			return withApp(cmd, func(a *app) error {
				return runScreen(cmd, a, sc, f)
			})
		},
	}
	for _, field := range sc.Fields {
		v := new(string)
		values[field] = v
		cmd.Flags().StringVar(v, flagName(field), "", field)
	}
	return cmd
}

func runScreen(cmd *cobra.Command, a *app, sc service.Screen, f service.Filters) error {
	if !a.auth.Session().HasUser() {
		return ErrNotSignedIn
	}

	ss, err := service.NewScreenState(sc, a.client, a.queries, cel.NewEvaluator(), a.logger)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := ss.Apply(ctx, f); err != nil {
		return err
	}
	if err := ss.Wait(ctx); err != nil {
		return err
	}

	view := screenView{
		Screen:  sc.Name,
		Filters: ss.Filters(),
		Needs:   make(map[string]needView),
	}
	var errs []error
	snap := ss.Snapshot()
	for _, name := range ss.NeedNames() {
		r := snap[name]
		nv := needView{Status: r.Status, Data: r.Data}
		if r.Err != nil {
			nv.Error = r.Err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", name, r.Err))
		}
		view.Needs[name] = nv
	}
	if err := render(a.out, a.cfg.Output, view); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d requests failed: %w", len(errs), len(sc.Needs), errors.Join(errs...))
	}
	return nil
}

func init() {
	for _, c := range screenCommands {
		rootCmd.AddCommand(newScreenCommand(c.use, c.short, c.long, c.sc))
	}
}
