package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/tui/client"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	profileName := session.Resolve(*profileFlag)
	if err := session.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	c := client.New(session.SocketPath(profileName))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch args[0] {
	case "status":
		cmdStatus(ctx, c, profileName, *jsonFlag)
	case "health":
		cmdHealth(ctx, c, *jsonFlag)
	case "dismiss":
		cmdDismiss(ctx, c)
	case "reconnect":
		cmdReconnect(ctx, c)
	case "rooms":
		cmdRooms(ctx, c, *jsonFlag)
	case "messages":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: parleyctl messages <room-id>")
			os.Exit(1)
		}
		cmdMessages(ctx, c, args[1], *jsonFlag)
	case "meeting":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: parleyctl meeting <meeting-id>")
			os.Exit(1)
		}
		cmdMeeting(ctx, c, args[1], *jsonFlag)
	case "stats":
		cmdStats(ctx, c)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: parleyctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status               Show profile and connectivity summary")
	fmt.Fprintln(os.Stderr, "  health               Show channel connectivity")
	fmt.Fprintln(os.Stderr, "  dismiss              Acknowledge the degraded banner")
	fmt.Fprintln(os.Stderr, "  reconnect            Re-dial every channel feed")
	fmt.Fprintln(os.Stderr, "  rooms                List rooms")
	fmt.Fprintln(os.Stderr, "  messages <room-id>   Show a room's visible messages")
	fmt.Fprintln(os.Stderr, "  meeting <id>         Show a meeting roster")
	fmt.Fprintln(os.Stderr, "  stats                Show daemon counters")
}

func cmdStatus(ctx context.Context, c *client.Client, profileName string, jsonOut bool) {
	h, err := c.Health(ctx)
	if err != nil {
		fail(err)
	}
	rooms, err := c.Rooms(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(map[string]any{"profile": profileName, "health": h, "rooms": len(rooms)})
		return
	}
	fmt.Printf("Profile: %s\n", profileName)
	fmt.Printf("Status:  %s\n", h.Combined)
	fmt.Printf("Rooms:   %d\n", len(rooms))
}

func cmdReconnect(ctx context.Context, c *client.Client) {
	if err := c.RestartFeeds(ctx); err != nil {
		fail(err)
	}
	fmt.Println("Feeds restarted.")
}

func cmdHealth(ctx context.Context, c *client.Client, jsonOut bool) {
	h, err := c.Health(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(h)
		return
	}
	fmt.Printf("Combined: %s\n", h.Combined)
	channels := make([]string, 0, len(h.Channels))
	for ch := range h.Channels {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	for _, ch := range channels {
		fmt.Printf("  %-12s %s\n", ch, h.Channels[ch])
	}
	if h.BannerVisible {
		fmt.Println("Banner: visible")
	}
}

func cmdDismiss(ctx context.Context, c *client.Client) {
	if err := c.DismissBanner(ctx); err != nil {
		fail(err)
	}
	fmt.Println("Banner dismissed.")
}

func cmdRooms(ctx context.Context, c *client.Client, jsonOut bool) {
	rooms, err := c.Rooms(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(rooms)
		return
	}
	for _, r := range rooms {
		name := r.Name
		if name == "" {
			name = r.ID
		}
		marks := ""
		if r.Muted {
			marks += " [muted]"
		}
		if r.MeetingID != "" {
			marks += " [meeting]"
		}
		fmt.Printf("%-24s %-10s%s\n", name, r.Type, marks)
	}
}

func cmdMessages(ctx context.Context, c *client.Client, roomID string, jsonOut bool) {
	msgs, err := c.Messages(ctx, roomID)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(msgs)
		return
	}
	for _, m := range msgs {
		sender := m.SenderName
		if sender == "" {
			sender = m.SenderID
		}
		body := m.Body
		if m.Deleted {
			body = "(deleted)"
		}
		fmt.Printf("[%s] %s: %s\n", time.UnixMilli(m.Timestamp).Format("15:04"), sender, body)
		for _, g := range m.Reactions {
			fmt.Printf("        %s x%d\n", g.Value, len(g.Actors))
		}
	}
}

func cmdMeeting(ctx context.Context, c *client.Client, meetingID string, jsonOut bool) {
	parts, tiles, err := c.Meeting(ctx, meetingID)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(map[string]any{"participants": parts, "tiles": tiles})
		return
	}
	for _, p := range parts {
		flags := ""
		if p.Audio {
			flags += " audio"
		}
		if p.Video {
			flags += " video"
		}
		if p.Screen {
			flags += " screen"
		}
		fmt.Printf("%-24s%s\n", p.Name, flags)
	}
	fmt.Printf("%d tiles\n", len(tiles))
}

func cmdStats(ctx context.Context, c *client.Client) {
	// Stats are passed through raw; shapes change with the daemon.
	req, err := c.Raw(ctx, "/v1/stats")
	if err != nil {
		fail(err)
	}
	fmt.Println(string(req))
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
