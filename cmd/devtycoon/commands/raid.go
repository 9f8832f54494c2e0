package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/devtycoon/forge/am"
	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/events"
	"github.com/devtycoon/forge/raid"
)

// RaidCmd groups raid commands
var RaidCmd = &cobra.Command{
	Use:   "raid",
	Short: "Follow raid rooms",
}

var raidTailCmd = &cobra.Command{
	Use:   "tail [raid-id]",
	Short: "Print raid events republished to NATS",
	Long: `Subscribe to the raid events a server republishes to NATS
(events.nats_url) and print them as they arrive. Without a raid id every
room is followed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRaidTail,
}

var (
	raidNATSURL string
	raidJSON    bool
)

func init() {
	raidTailCmd.Flags().StringVar(&raidNATSURL, "nats", "", "NATS URL (default: events.nats_url from config)")
	raidTailCmd.Flags().BoolVar(&raidJSON, "json", false, "Print raw JSON lines")
	RaidCmd.AddCommand(raidTailCmd)
}

func runRaidTail(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	url := raidNATSURL
	if url == "" {
		url = cfg.Events.NATSURL
	}
	if url == "" {
		return errors.New("no NATS URL: set events.nats_url or pass --nats")
	}

	subject := events.AllRooms(cfg.GetSubjectPrefix())
	if len(args) == 1 {
		subject = events.RoomWildcard(cfg.GetSubjectPrefix(), args[0])
	}

	sub, err := events.NewNATSSubscriber(url)
	if err != nil {
		return err
	}
	defer sub.Close()

	msgs, cancel, err := sub.Subscribe(subject)
	if err != nil {
		return err
	}
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if !raidJSON {
		pterm.Info.Printfln("Following %s on %s (Ctrl+C to stop)", subject, url)
	}
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if raidJSON {
				fmt.Println(string(msg.Data))
				continue
			}
			fmt.Println(formatRaidMessage(msg))
		case <-sigChan:
			return nil
		}
	}
}

// formatRaidMessage renders one republished message as a line. Closed
// notices are not events and print as their raw payload.
func formatRaidMessage(msg events.Message) string {
	token := msg.Subject[strings.LastIndex(msg.Subject, ".")+1:]
	if token == events.TokenClosed {
		return pterm.Yellow("closed ") + string(msg.Data)
	}

	var ev raid.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.Type == "" {
		return msg.Subject + " " + string(msg.Data)
	}
	line := fmt.Sprintf("%s #%d %-12s %s", ev.RoomID, ev.Seq, ev.Type, ev.PlayerID)
	if len(ev.Payload) > 0 {
		line += " " + string(ev.Payload)
	}
	return line
}
