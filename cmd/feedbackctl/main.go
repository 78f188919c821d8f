// Command feedbackctl is a terminal client for the feedback API: it submits
// feedback, prints the record table and aggregate cards, and exports CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Daneel-Li/feedback-board/internal/client"
	mxm "github.com/Daneel-Li/feedback-board/internal/models"
	"github.com/Daneel-Li/feedback-board/pkg/utils"
)

const usage = `usage: feedbackctl [-addr URL] <command> [flags]

commands:
  health                         check the API is up
  submit -name N -message M [-email E] [-rating R]
  list                           print all feedback, newest first
  stats                          print the aggregate cards
  dashboard                      print cards and table
  export [-o FILE] [-server]     write CSV (local rendering unless -server)
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("feedbackctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	addr := fs.String("addr", "", "API base URL (default $FEEDBACK_API or http://localhost:4000)")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	base := *addr
	if base == "" {
		base = os.Getenv("FEEDBACK_API")
	}
	if base == "" {
		base = "http://localhost:4000"
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	api := client.New(base, nil)
	dash := client.NewDashboard(api)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	var err error
	switch cmd {
	case "health":
		err = cmdHealth(ctx, api, stdout)
	case "submit":
		err = cmdSubmit(ctx, dash, rest, stdout, stderr)
	case "list":
		err = cmdList(ctx, dash, stdout)
	case "stats":
		err = cmdStats(ctx, dash, stdout)
	case "dashboard":
		if err = dash.Load(ctx); err == nil {
			printStats(stdout, dash.Stats())
			fmt.Fprintln(stdout)
			printTable(stdout, dash.Feedbacks())
		}
	case "export":
		err = cmdExport(ctx, dash, api, rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintln(stderr, "error:", apiErr.Message)
		} else {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func cmdHealth(ctx context.Context, api *client.Client, out io.Writer) error {
	h, err := api.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s)\n", h.Status, time.UnixMilli(h.Timestamp).UTC().Format(time.RFC3339))
	return nil
}

func cmdSubmit(ctx context.Context, dash *client.Dashboard, args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(errOut)
	name := fs.String("name", "", "your name (required)")
	email := fs.String("email", "", "email (optional)")
	message := fs.String("message", "", "feedback message (required)")
	rating := fs.Int("rating", 5, "rating 1-5")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *rating < 1 || *rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}

	fb, err := dash.Submit(ctx, mxm.FeedbackInput{
		Name:    *name,
		Email:   email,
		Message: *message,
		Rating:  rating,
	})
	if err != nil {
		if msg := dash.LastError(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	fmt.Fprintf(out, "created feedback #%d\n", fb.ID)
	printStats(out, dash.Stats())
	return nil
}

func cmdList(ctx context.Context, dash *client.Dashboard, out io.Writer) error {
	if err := dash.Load(ctx); err != nil {
		return err
	}
	printTable(out, dash.Feedbacks())
	return nil
}

func cmdStats(ctx context.Context, dash *client.Dashboard, out io.Writer) error {
	if err := dash.Load(ctx); err != nil {
		return err
	}
	printStats(out, dash.Stats())
	return nil
}

func cmdExport(ctx context.Context, dash *client.Dashboard, api *client.Client, args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	path := fs.String("o", "", "output file (default stdout)")
	fromServer := fs.Bool("server", false, "download the server's export instead of rendering locally")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := out
	if *path != "" {
		f, err := os.Create(*path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if *fromServer {
		return api.DownloadExport(ctx, w)
	}
	return dash.ExportCSV(ctx, w)
}

func printStats(out io.Writer, st mxm.Stats) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOTAL\tAVG RATING\tPOSITIVE\tNEGATIVE")
	fmt.Fprintf(tw, "%d\t%.2f\t%d\t%d\n", st.Total, st.AvgRating, st.Positive, st.Negative)
	tw.Flush()
}

func printTable(out io.Writer, rows []*mxm.Feedback) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No feedback yet")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tRATING\tDATE\tMESSAGE")
	for _, r := range rows {
		rating := "-"
		if r.Rating != nil {
			rating = fmt.Sprint(*r.Rating)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, utils.Deref(r.Email, "-"), rating,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			strings.ReplaceAll(r.Message, "\n", " "))
	}
	tw.Flush()
}
