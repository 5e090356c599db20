package stats

import (
	"fmt"
	"io"

	"github.com/kunansy/readingqueue/internal/dateutil"
	"github.com/kunansy/readingqueue/internal/model"
	"github.com/kunansy/readingqueue/internal/readinglog"
)

// RenderLog prints the raw log, one line per logged day. A material read
// on several days in a row keeps its title on the first line and "..." on
// the following ones.
func RenderLog(w io.Writer, log *readinglog.Log, titles map[string]string) error {
	lastMaterialID := ""
	for _, e := range log.Entries() {
		label := "..."
		if e.Record.MaterialID != lastMaterialID {
			lastMaterialID = e.Record.MaterialID
			label = e.Record.MaterialTitle
			if label == "" {
				label = titles[e.Record.MaterialID]
			}
			label = fmt.Sprintf("«%s»", label)
		}
		if _, err := fmt.Fprintf(w, "%s: %d, %s\n", e.Date, e.Record.Count, label); err != nil {
			return err
		}
	}
	return nil
}

// RenderLogStatistics prints whole-log statistics.
func RenderLogStatistics(w io.Writer, s model.LogStatistics) error {
	lines := []string{
		fmt.Sprintf("Start: %s", s.StartDate),
		fmt.Sprintf("Stop: %s", s.StopDate),
		fmt.Sprintf("Duration: %s", dateutil.Period(s.Duration)),
		fmt.Sprintf("Lost time: %s", dateutil.Period(s.LostTime)),
		fmt.Sprintf("Average: %d pages per day", s.Average),
		fmt.Sprintf("Total pages read: %d", s.TotalPagesRead),
		fmt.Sprintf("Would be total: %d", s.WouldBeTotal),
		fmt.Sprintf("Min: %s", formatMinMax(s.Min)),
		fmt.Sprintf("Max: %s", formatMinMax(s.Max)),
		fmt.Sprintf("Median: %d pages", s.Median),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatMinMax(m model.MinMax) string {
	label := m.MaterialTitle
	if label == "" {
		label = m.MaterialID
	}
	return fmt.Sprintf("%s = %d pages, «%s»", m.Date, m.Count, label)
}

// RenderMaterialStatistics prints one block per material, reading ones
// with their forecast fields.
func RenderMaterialStatistics(w io.Writer, materials []model.MaterialStatistics) error {
	if len(materials) == 0 {
		_, err := fmt.Fprintln(w, "No materials found.")
		return err
	}
	for i, m := range materials {
		if i > 0 {
			if _, err := fmt.Fprintln(w, ""); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "«%s», pages: %d\n", m.Material.Title, m.Material.Pages); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Started at: %s\n", m.Started); err != nil {
			return err
		}
		if m.Completed != nil {
			if _, err := fmt.Fprintf(w, "Completed at: %s\n", *m.Completed); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "Duration: %s, lost time: %s\n",
			dateutil.Period(m.Duration), dateutil.Period(m.LostTime)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Total: %d pages, average: %d pages per day\n",
			m.Total, m.Average); err != nil {
			return err
		}
		if m.RemainingPages != nil && m.RemainingDays != nil && m.WouldBeCompleted != nil {
			if _, err := fmt.Fprintf(w, "%d pages remain, would be completed at %s (in %s)\n",
				*m.RemainingPages, *m.WouldBeCompleted, dateutil.Period(*m.RemainingDays)); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderTopDays prints the most productive days as a table.
func RenderTopDays(w io.Writer, days []model.MinMax) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "Nothing logged yet.")
		return err
	}
	headers := []string{"Date", "Pages", "Material"}
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		label := d.MaterialTitle
		if label == "" {
			label = d.MaterialID
		}
		rows = append(rows, []string{
			d.Date.String(),
			fmt.Sprintf("%d", d.Count),
			label,
		})
	}
	for _, line := range Table(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderEstimates prints the queue forecast as a table.
func RenderEstimates(w io.Writer, estimates []model.MaterialEstimate) error {
	if len(estimates) == 0 {
		_, err := fmt.Fprintln(w, "No materials in the queue.")
		return err
	}
	headers := []string{"Title", "Pages", "Will be started", "Will be completed", "Duration"}
	rows := make([][]string, 0, len(estimates))
	for _, e := range estimates {
		rows = append(rows, []string{
			e.Material.Title,
			fmt.Sprintf("%d", e.Material.Pages),
			e.WillBeStarted.String(),
			e.WillBeCompleted.String(),
			dateutil.Period(e.ExpectedDuration),
		})
	}
	for _, line := range Table(headers, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
