package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/mcoot/blazeboard/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Success:
		o.printSuccess(v)
	case response.ExternalRegistered:
		o.printExternalRegistered(v)
	case response.Leaderboard:
		o.printLeaderboard(v)
	case response.PlayerDetail:
		o.printPlayerDetail(v)
	case response.MatchStatus:
		o.printMatchStatus(v)
	case response.Victory:
		o.printVictory(v)
	case map[string]response.RegistryEntry:
		o.printRegistry(v)
	case response.Candidates:
		o.printCandidates(v)
	case response.Health:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printSuccess(s response.Success) {
	if s.Message != "" {
		o.printf("%s\n", s.Message)
		return
	}
	o.printf("OK\n")
}

func (o *Output) printExternalRegistered(r response.ExternalRegistered) {
	o.printf("%s\n", r.Message)
	o.printf("Assigned RFID: %s\n", r.RFID)
}

func (o *Output) printLeaderboard(lb response.Leaderboard) {
	for i, team := range [][]response.PlayerSummary{lb.Team1, lb.Team2} {
		if i > 0 {
			o.printf("\n")
		}
		kills := 0
		for _, p := range team {
			kills += p.Kills
		}
		o.printf("Team %d (%d kills)\n", i+1, kills)

		tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "  RFID\tNAME\tKILLS\tDEATHS")
		for _, p := range team {
			_, _ = fmt.Fprintf(tw, "  %s\t%s\t%d\t%d\n", p.RFID, p.Name, p.Kills, p.Deaths)
		}
		_ = tw.Flush()
	}
}

func (o *Output) printPlayerDetail(p response.PlayerDetail) {
	o.printf("Player: %s (%s)\n", p.Name, p.RFID)
	o.printf("Team: %s\n", p.Team)
	o.printf("Kills: %d  Deaths: %d  K/D: %.2f\n", p.Kills, p.Deaths, p.KDRatio)
	if p.External {
		o.printf("External: %s, %s, %s\n", p.Email, p.Mobile, p.College)
	}
	if n := len(p.KillTimestamps); n > 0 {
		o.printf("Last kill: %s\n", p.KillTimestamps[n-1].Format(time.RFC3339))
	}
	if n := len(p.DeathTimestamps); n > 0 {
		o.printf("Last death: %s\n", p.DeathTimestamps[n-1].Format(time.RFC3339))
	}
}

func (o *Output) printMatchStatus(s response.MatchStatus) {
	state := "waiting"
	switch {
	case s.Ended:
		state = "ended"
	case s.Active:
		state = "in progress"
	}
	o.printf("Match: %s\n", state)
}

func (o *Output) printVictory(v response.Victory) {
	switch v.WinningTeam {
	case "tie":
		o.printf("Result: tie\n")
	default:
		o.printf("Winner: %s\n", v.WinningTeam)
	}
	o.printf("Score: %d - %d\n", v.Team1Score, v.Team2Score)
	o.printf("MVP: %s (%d kills)\n", v.MVP.Name, v.MVP.Kills)
}

func (o *Output) printRegistry(reg map[string]response.RegistryEntry) {
	ids := make([]string, 0, len(reg))
	for id := range reg {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RFID\tNAME\tTEAM")
	for _, id := range ids {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", id, reg[id].Name, reg[id].Team)
	}
	_ = tw.Flush()
}

func (o *Output) printCandidates(c response.Candidates) {
	o.printf("External registrations: %d\n", c.Count)
	if c.Count == 0 {
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RFID\tNAME\tTEAM\tEMAIL\tMOBILE\tCOLLEGE")
	for _, p := range c.Candidates {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.RFID, p.Name, p.Team, p.Email, p.Mobile, p.College)
	}
	_ = tw.Flush()
}
