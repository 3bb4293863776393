package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"procurement-console/internal/client"
	"procurement-console/internal/console"
	"procurement-console/internal/core"
	"procurement-console/internal/report"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const usage = `Usage:
  console po list [--status s] [--tab s] [--vendor id] [--location id] [--label l] [--search q] [--page n] [--sort key] [--desc]
  console po show <id>
  console po new --vendor id --location id --date YYYY-MM-DD [--gst %] [--wht %] [--demand 42,43] [--item id:qty[:rate]]... [--attach file] [--submit]
  console po submit|approve|reject|delete <id>
  console po export [filters] [--columns a,b] [-o file]
  console po next-number
  console demands [--type rfq|market_purchase] [--search q] [--location id] [--from date] [--to date] [--page n]`

// Run executes one console command against the API. args is os.Args[1:].
func Run(ctx context.Context, c *client.Client, token string, args []string, out io.Writer) error {
	r := &runner{c: c, role: roleFromToken(token), out: out, notices: &console.NoticeLog{}}
	defer r.flushNotices()

	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "po":
		if len(args) < 2 {
			return errors.New(usage)
		}
		return r.po(ctx, args[1], args[2:])
	case "demands", "dem", "d":
		return r.demands(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
}

type runner struct {
	c       *client.Client
	role    string
	out     io.Writer
	notices *console.NoticeLog
}

func (r *runner) po(ctx context.Context, sub string, args []string) error {
	switch sub {
	case "list", "ls":
		return r.list(ctx, args)
	case "show":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		po, err := r.c.GetPurchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		aff, err := r.c.Affordances(ctx, id)
		if err != nil {
			return err
		}
		printOrder(r.out, *po, aff)
		if len(po.History) > 0 {
			users, err := r.c.Users(ctx)
			if err != nil {
				r.notices.Notify(core.Notice{Level: core.NoticeWarning, Message: "Could not load users: " + err.Error()})
			}
			printHistory(r.out, po.History, core.UserNames(users))
		}
		return nil
	case "new":
		return r.create(ctx, args)
	case "submit":
		return r.transition(ctx, args, core.StatusPending)
	case "approve":
		return r.transition(ctx, args, core.StatusApproved)
	case "reject":
		return r.transition(ctx, args, core.StatusRejected)
	case "delete", "rm":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		po, err := r.c.GetPurchaseOrder(ctx, id)
		if err != nil {
			return err
		}
		return r.form(*po).Delete(ctx)
	case "export":
		return r.export(ctx, args)
	case "next-number":
		n, err := r.c.NextPONumber(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, n)
		return nil
	default:
		return fmt.Errorf("unknown po command: %s\n%s", sub, usage)
	}
}

// orderFlags registers the list filters shared by list and export.
func orderFlags(fs *flag.FlagSet) *console.OrderQuery {
	q := &console.OrderQuery{Page: 1}
	fs.StringVar(&q.Status, "status", console.All, "status dropdown")
	fs.StringVar(&q.Tab, "tab", console.All, "status tab")
	fs.IntVar(&q.VendorID, "vendor", 0, "vendor ID")
	fs.IntVar(&q.LocationID, "location", 0, "location ID")
	fs.StringVar(&q.Label, "label", console.All, "label")
	fs.StringVar(&q.Search, "search", "", "free-text search")
	fs.IntVar(&q.Page, "page", 1, "page number")
	fs.IntVar(&q.PerPage, "per-page", core.DefaultPerPage, "rows per page")
	return q
}

func (r *runner) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("po list", flag.ContinueOnError)
	fs.SetOutput(r.out)
	q := orderFlags(fs)
	sortKey := fs.String("sort", "", "sort the page by po_number, vendor, location, delivery_date, status, total_payable or created_at")
	desc := fs.Bool("desc", false, "sort descending")
	if err := fs.Parse(args); err != nil {
		return err
	}

	vendors, err := r.c.Vendors(ctx)
	if err != nil {
		return err
	}
	locations, err := r.c.Locations(ctx)
	if err != nil {
		return err
	}
	list := console.NewOrderList(r.c, console.NamesFrom(vendors, locations), r.notices)
	defer list.Close()
	if err := list.Set(ctx, *q); err != nil {
		return err
	}
	if *sortKey != "" {
		s := list.SortBy(console.SortKey(*sortKey))
		if *desc && !s.Desc {
			list.SortBy(console.SortKey(*sortKey))
		}
	}

	t, err := report.Project(list.Rows(), report.PurchaseOrderColumns,
		[]string{"po_number", "vendor_name", "location_name", "delivery_date", "status", "total_payable"})
	if err != nil {
		return err
	}
	printTable(r.out, t)
	page := list.Page()
	fmt.Fprintf(r.out, "  page %d of %d, %d orders\n", page.CurrentPage, page.LastPage, page.Total)
	return nil
}

func (r *runner) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("po export", flag.ContinueOnError)
	fs.SetOutput(r.out)
	q := orderFlags(fs)
	columns := fs.String("columns", "", "comma-separated column keys")
	output := fs.String("o", "", "output file (defaults to the server's file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var keys []string
	for _, k := range strings.Split(*columns, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if _, err := report.SelectColumns(report.PurchaseOrderColumns, keys); err != nil {
		return err
	}

	data, name, err := r.c.ExportPurchaseOrders(ctx, q.Filter(), keys)
	if err != nil {
		return err
	}
	path := *output
	if path == "" {
		path = filepath.Base(name)
	}
	if path == "" || path == "." {
		path = "purchase_orders.xlsx"
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(r.out, "Exported %d bytes to %s\n", len(data), path)
	return nil
}

func (r *runner) demands(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("demands", flag.ContinueOnError)
	fs.SetOutput(r.out)
	q := console.DemandQuery{Page: 1}
	typ := fs.String("type", console.All, "rfq or market_purchase")
	fs.StringVar(&q.Search, "search", "", "free-text search")
	fs.IntVar(&q.LocationID, "location", 0, "location ID")
	fs.StringVar(&q.DateFrom, "from", "", "required date from")
	fs.StringVar(&q.DateTo, "to", "", "required date to")
	fs.IntVar(&q.Page, "page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q.Type = core.DemandType(*typ)

	list := console.NewDemandList(r.c, q.Type, r.notices)
	defer list.Close()
	if err := list.Set(ctx, q); err != nil {
		return err
	}
	page := list.Page()
	t, err := report.Project(page.Data, report.DemandColumns, nil)
	if err != nil {
		return err
	}
	printTable(r.out, t)
	fmt.Fprintf(r.out, "  page %d of %d, %d pending demands\n", page.CurrentPage, page.LastPage, page.Total)
	return nil
}

// lineFlag collects repeated --item id:qty[:rate] values.
type lineFlag []string

func (l *lineFlag) String() string { return strings.Join(*l, " ") }

func (l *lineFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func (r *runner) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("po new", flag.ContinueOnError)
	fs.SetOutput(r.out)
	var (
		vendor   = fs.Int("vendor", 0, "vendor ID")
		location = fs.Int("location", 0, "delivery location ID")
		date     = fs.String("date", "", "delivery date YYYY-MM-DD")
		gst      = fs.String("gst", "0", "GST rate in percent")
		wht      = fs.String("wht", "0", "WHT rate in percent")
		label    = fs.String("label", "", "label")
		notes    = fs.String("notes", "", "notes")
		demandCS = fs.String("demand", "", "comma-separated demand IDs to bind")
		typ      = fs.String("type", string(core.DemandTypeRFQ), "demand type to pick from")
		attach   = fs.String("attach", "", "attachment file")
		submit   = fs.Bool("submit", false, "submit for approval after saving")
		items    lineFlag
	)
	fs.Var(&items, "item", "manual line id:qty[:rate], repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	gstRate, err := decimal.NewFromString(*gst)
	if err != nil {
		return fmt.Errorf("--gst: %w", err)
	}
	whtRate, err := decimal.NewFromString(*wht)
	if err != nil {
		return fmt.Errorf("--wht: %w", err)
	}

	master, err := r.c.Items(ctx)
	if err != nil {
		return err
	}
	form := console.NewForm(r.c, core.DraftEnv{Items: core.ItemIndex(master), Policy: core.DefaultPolicy}, r.role, r.notices)

	err = form.Apply(
		core.SetHeader{VendorID: vendor, LocationID: location, DeliveryDate: date, Label: label, Notes: notes},
		core.SetGSTRate{Rate: gstRate},
		core.SetWHTRate{Rate: whtRate},
	)
	if err != nil {
		return err
	}

	if ids, err := parseIDs(*demandCS); err != nil {
		return fmt.Errorf("--demand: %w", err)
	} else if len(ids) > 0 {
		demands, err := r.findDemands(ctx, core.DemandType(*typ), ids)
		if err != nil {
			return err
		}
		if err := form.Apply(core.BindDemands{Demands: demands}); err != nil {
			return err
		}
	}

	for _, raw := range items {
		cmds, err := manualLine(form.Order(), raw)
		if err != nil {
			return fmt.Errorf("--item %s: %w", raw, err)
		}
		if err := form.Apply(cmds...); err != nil {
			return err
		}
	}

	if *attach != "" {
		f, err := os.Open(*attach)
		if err != nil {
			return fmt.Errorf("open attachment: %w", err)
		}
		defer f.Close()
		form.Attach(&client.Attachment{Name: filepath.Base(*attach), Body: f})
	}

	if err := form.Save(ctx); err != nil {
		return err
	}
	if *submit {
		if err := form.Transition(ctx, core.StatusPending); err != nil {
			return err
		}
	}
	printOrder(r.out, form.Order(), form.Affordances())
	return nil
}

// findDemands walks the pending demand pages until every ID is found.
func (r *runner) findDemands(ctx context.Context, typ core.DemandType, ids []int) ([]core.Demand, error) {
	list := console.NewDemandList(r.c, typ, r.notices)
	defer list.Close()

	found := map[int]core.Demand{}
	q := console.DemandQuery{Type: typ, Page: 1, PerPage: core.MaxPerPage}
	for {
		if err := list.Set(ctx, q); err != nil {
			return nil, err
		}
		for _, d := range list.Selected(ids...) {
			found[d.ID] = d
		}
		page := list.Page()
		if len(found) == len(ids) || page.CurrentPage >= page.LastPage {
			break
		}
		q = q.WithPage(q.Page + 1)
	}

	out := make([]core.Demand, 0, len(ids))
	var missing []string
	for _, id := range ids {
		d, ok := found[id]
		if !ok {
			missing = append(missing, strconv.Itoa(id))
			continue
		}
		out = append(out, d)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("demands not pending: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// manualLine turns id:qty[:rate] into reducer commands, reusing the blank
// starting row when it is still untouched.
func manualLine(po core.PurchaseOrder, raw string) ([]core.Command, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, errors.New("want id:qty[:rate]")
	}
	var cmds []core.Command
	index := len(po.Lines)
	if len(po.Lines) == 1 && po.Lines[0].Blank() {
		index = 0
	} else {
		cmds = append(cmds, core.AddLineItem{})
	}
	cmds = append(cmds,
		core.UpdateLineItem{Index: index, Field: core.FieldItemID, Value: parts[0]},
		core.UpdateLineItem{Index: index, Field: core.FieldQuantity, Value: parts[1]},
	)
	if len(parts) == 3 {
		cmds = append(cmds, core.UpdateLineItem{Index: index, Field: core.FieldRate, Value: parts[2]})
	}
	return cmds, nil
}

func (r *runner) transition(ctx context.Context, args []string, to core.Status) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	po, err := r.c.GetPurchaseOrder(ctx, id)
	if err != nil {
		return err
	}
	form := r.form(*po)
	if err := form.Transition(ctx, to); err != nil {
		return err
	}
	printOrder(r.out, form.Order(), form.Affordances())
	return nil
}

func (r *runner) form(po core.PurchaseOrder) *console.Form {
	return console.EditForm(r.c, core.DraftEnv{Policy: core.DefaultPolicy}, po, r.role, r.notices)
}

func (r *runner) flushNotices() {
	for _, n := range r.notices.Drain() {
		fmt.Fprintf(r.out, "[%s] %s\n", n.Level, n.Message)
	}
}

// roleFromToken reads the role claim for local workflow checks. The server
// verifies the token; the console only needs the claim.
func roleFromToken(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

func idArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one purchase order ID")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid purchase order ID %q", args[0])
	}
	return id, nil
}

func parseIDs(s string) ([]int, error) {
	var ids []int
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printTable(w io.Writer, t report.Table) {
	rows := t.Strings()
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}
	total := 0
	for _, n := range widths {
		total += n + 2
	}

	line := func(cells []string) {
		var b strings.Builder
		for i, c := range cells {
			fmt.Fprintf(&b, "  %-*s", widths[i], c)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	fmt.Fprintln(w, strings.Repeat("=", total))
	line(t.Headers)
	fmt.Fprintln(w, strings.Repeat("-", total))
	for _, row := range rows {
		line(row)
	}
	fmt.Fprintln(w, strings.Repeat("=", total))
}

func printOrder(w io.Writer, po core.PurchaseOrder, aff core.Affordances) {
	number := "(unsaved)"
	if po.PONumber != nil {
		number = *po.PONumber
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  PURCHASE ORDER %s  [%s]\n", number, po.Status)
	fmt.Fprintf(w, "  Vendor   : %s\n", orDash(po.VendorName))
	fmt.Fprintf(w, "  Deliver  : %s on %s\n", orDash(po.LocationName), orDash(po.DeliveryDate))
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  %-3s %-28s %-6s %10s %10s %12s\n", "#", "ITEM", "UOM", "QTY", "RATE", "AMOUNT")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for i, l := range po.Lines {
		name := l.ItemName
		if name == "" {
			name = l.Description
		}
		if l.DemandNumber != "" {
			name += " (" + l.DemandNumber + ")"
		}
		fmt.Fprintf(w, "  %-3d %-28s %-6s %10s %10s %12s\n",
			i+1, truncate(name, 28), l.UOM, l.Quantity.String(), l.Rate.StringFixed(2), l.Amount.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  %-52s %17s\n", "Subtotal", po.Subtotal.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %17s\n", "GST @ "+po.GSTRate.String()+"%", po.GSTAmount.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %17s\n", "Total after tax", po.TotalAfterTax.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %17s\n", "WHT @ "+po.WHTRate.String()+"%", po.WHTAmount.StringFixed(2))
	fmt.Fprintf(w, "  %-52s %17s\n", "Total payable", po.TotalPayable.StringFixed(2))
	fmt.Fprintf(w, "  %s\n", po.AmountInWords)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	if len(aff.Transitions) > 0 {
		actions := make([]string, 0, len(aff.Transitions))
		for _, t := range aff.Transitions {
			actions = append(actions, t.Action)
		}
		fmt.Fprintf(w, "  Actions: %s\n", strings.Join(actions, ", "))
	}
}

func printHistory(w io.Writer, history []core.StatusChange, users map[int]string) {
	fmt.Fprintln(w, "  History:")
	for _, h := range history {
		who := h.ActorRole
		if h.ActorID != nil {
			if name, ok := users[*h.ActorID]; ok {
				who = name
			}
		}
		from := string(h.From)
		if from == "" {
			from = "new"
		}
		fmt.Fprintf(w, "    %s  %s -> %s  by %s\n", h.ChangedAt.Format("2006-01-02 15:04"), from, h.To, orDash(who))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
