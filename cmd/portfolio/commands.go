package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/shanejorr-team/personal-blog/internal/domain/photo"
	"github.com/shanejorr-team/personal-blog/internal/pkg/logger"
)

func migrateCommand(c *cli.Context, e *env) error {
	// run already migrated
	fmt.Fprintln(c.App.Writer, "schema is up to date")
	return nil
}

func addFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(photo.WritableColumns))
	for _, col := range photo.WritableColumns {
		flags = append(flags, &cli.StringFlag{
			Name:  flagName(col),
			Usage: string(col),
		})
	}
	return flags
}

func flagName(col photo.Column) string {
	return strings.ReplaceAll(string(col), "_", "-")
}

func addCommand(c *cli.Context, e *env) error {
	rec := photo.Record{}
	for _, col := range photo.WritableColumns {
		if c.IsSet(flagName(col)) {
			rec[col] = c.String(flagName(col))
		}
	}

	in := bufio.NewReader(os.Stdin)
	for _, col := range photo.RequiredColumns {
		if strings.TrimSpace(rec[col]) != "" {
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s: ", col)
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		rec[col] = strings.TrimSpace(line)
	}

	id, err := e.service.AddOne(c.Context, rec)
	if err != nil {
		return report(c, err)
	}
	fmt.Fprintf(c.App.Writer, "added photo %d (%s)\n", id, photo.AssetKey(photo.Category(rec.Value(photo.ColumnCategory)), rec.Value(photo.ColumnFilename)))
	return nil
}

func importCommand(c *cli.Context, e *env) error {
	batch, err := readBatch(c, photo.ModeCreate)
	if err != nil {
		return report(c, err)
	}
	summary, err := e.service.AddBatch(c.Context, batch.Records, photo.BatchOptions{DryRun: c.Bool("dry-run")})
	if err != nil {
		return report(c, err)
	}
	printSummary(c, "added", summary)
	return nil
}

func updateCommand(c *cli.Context, e *env) error {
	batch, err := readBatch(c, photo.ModeUpdate)
	if err != nil {
		return report(c, err)
	}
	summary, err := e.service.UpdateBatch(c.Context, batch.Records, photo.BatchOptions{DryRun: c.Bool("dry-run")})
	if err != nil {
		return report(c, err)
	}
	printSummary(c, "updated", summary)
	return nil
}

func readBatch(c *cli.Context, mode photo.Mode) (*photo.Batch, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("%w: expected one CSV file argument", photo.ErrInvalidArgument)
	}
	f, err := os.Open(c.Args().First())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	batch, err := photo.ParseCSV(f, mode)
	if err != nil {
		return nil, err
	}
	logger.FromContext(c.Context).Info().
		Str("file", c.Args().First()).
		Str("mode", mode.String()).
		Int("rows", len(batch.Records)).
		Msg("CSV parsed")
	return batch, nil
}

func exportCommand(c *cli.Context, e *env) error {
	photos, err := e.repo.ListAll(c.Context)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		return photo.WriteCSV(c.App.Writer, photos)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	return exportTo(f, photos)
}

// exportTo writes the CSV and closes w. A failed close means the export
// may be truncated, so it is reported like a write error.
func exportTo(w io.WriteCloser, photos []*photo.Photo) error {
	if err := photo.WriteCSV(w, photos); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	return nil
}

func countriesCommand(c *cli.Context, e *env) error {
	countries, err := e.queries.AllCountries(c.Context)
	if err != nil {
		return err
	}
	for _, country := range countries {
		fmt.Fprintln(c.App.Writer, country)
	}
	return nil
}

func buildCommand(c *cli.Context, e *env) error {
	photos, err := e.repo.ListAll(c.Context)
	if err != nil {
		return err
	}
	site, err := e.assembler().Build(c.Context, photos)
	if err != nil {
		return err
	}
	out := c.String("out")
	if err := site.Write(out); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %d photos to %s\n", len(photos), out)
	return nil
}

func printSummary(c *cli.Context, verb string, s *photo.BatchSummary) {
	if s.DryRun {
		verb = "would be " + verb
	}
	for _, row := range s.Rows {
		line := fmt.Sprintf("row %d: %s", row.Row, row.Filename)
		if row.ID != 0 {
			line += fmt.Sprintf(" (id %d)", row.ID)
		}
		if len(row.Columns) > 0 {
			cols := make([]string, len(row.Columns))
			for i, col := range row.Columns {
				cols[i] = string(col)
			}
			line += " [" + strings.Join(cols, ", ") + "]"
		}
		fmt.Fprintln(c.App.Writer, line)
	}
	fmt.Fprintf(c.App.Writer, "%d photo(s) %s\n", s.Count(), verb)
}

// report prints every violation on its own line and turns the error into a
// non-zero exit
func report(c *cli.Context, err error) error {
	var batchErr *photo.BatchError
	var verrs photo.ValidationErrors
	switch {
	case errors.As(err, &batchErr):
		verrs = batchErr.Errors
	case errors.As(err, &verrs):
	default:
		return err
	}

	for _, fe := range verrs {
		fmt.Fprintln(c.App.ErrWriter, fe.Error())
	}
	return cli.Exit(fmt.Sprintf("rejected: %d problem(s), nothing was written", len(verrs)), 1)
}
