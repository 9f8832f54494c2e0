package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/devtycoon/forge/am"
	"github.com/devtycoon/forge/logger"
	"github.com/devtycoon/forge/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, dbPath string, cfg *am.Config) {
	versionInfo := version.Get()

	_ = pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Dev", pterm.NewStyle(pterm.FgCyan)),
		putils.LettersFromStringWithStyle("Tycoon", pterm.NewStyle(pterm.FgLightMagenta)),
	).Render()

	raid := cfg.GetRaidConfig()
	events := "in-process only"
	if cfg.Events.NATSURL != "" {
		events = fmt.Sprintf("%s (%s.>)", cfg.Events.NATSURL, cfg.GetSubjectPrefix())
	}

	_ = pterm.DefaultTable.WithData(pterm.TableData{
		{"Version", fmt.Sprintf("%s (commit %s)", versionInfo.Version, versionInfo.Short())},
		{"Built", versionInfo.BuildTime},
		{"Verbosity", logger.LevelName(verbosity)},
		{"Database", dbPath},
		{"Default language", cfg.GetDefaultLanguage()},
		{"Raid rooms", fmt.Sprintf("max %d players, %d ms teardown", raid.MaxParticipants, raid.TeardownGraceMS)},
		{"Raid events", events},
	}).Render()

	pterm.Println()
	pterm.Info.Println("Press Ctrl+C to stop")
}
