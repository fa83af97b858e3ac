package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/agentdeck/internal/gateway"
	"github.com/soyeahso/agentdeck/internal/hooks"
	"github.com/soyeahso/agentdeck/internal/version"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the reference backend's live event feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			wsURL, err := feedURL(cfg.Console.BaseURL, cfg.Console.Token)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			header := http.Header{"User-Agent": []string{version.UserAgent()}}
			conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
			if err != nil {
				if resp != nil {
					return fmt.Errorf("connecting to feed: %s", resp.Status)
				}
				return fmt.Errorf("connecting to feed: %w", err)
			}
			defer conn.Close()

			go func() {
				<-ctx.Done()
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				conn.Close()
			}()

			return followFeed(ctx, conn, cmd.OutOrStdout(), raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "json", false, "print raw frames")
	return cmd
}

// feedURL turns the backend base URL into its websocket feed URL.
func feedURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func followFeed(ctx context.Context, conn *websocket.Conn, out io.Writer, raw bool) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading feed: %w", err)
		}
		if raw {
			fmt.Fprintln(out, string(data))
			continue
		}

		var f gateway.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			log.Warn().Err(err).Msg("skipping malformed frame")
			continue
		}
		fmt.Fprintln(out, formatFrame(f))
	}
}

// formatFrame renders one feed frame as a single line.
func formatFrame(f gateway.Frame) string {
	if f.Event == gateway.EventHello {
		var h gateway.Hello
		json.Unmarshal(f.Payload, &h)
		return fmt.Sprintf("connected to agentdeck %s (conn %s)", h.Version, h.ConnID)
	}

	var p hooks.Payload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		return fmt.Sprintf("#%d %s %s", f.Seq, f.Event, string(f.Payload))
	}
	ts := p.Time.Local().Format("15:04:05")

	switch f.Event {
	case hooks.EventExecutionCompleted:
		status := "ok"
		if ok, _ := p.Data["success"].(bool); !ok {
			status = fmt.Sprintf("FAILED: %v", p.Data["error"])
		}
		latency, _ := p.Data["latencyMs"].(float64)
		return fmt.Sprintf("%s #%d %v %v %.0fms %s", ts, f.Seq, p.Data["agent"], p.Data["taskType"], latency, status)
	case hooks.EventConfigUpdated:
		return fmt.Sprintf("%s #%d config updated for %v (%v rules)", ts, f.Seq, p.Data["agent"], p.Data["rules"])
	default:
		return fmt.Sprintf("%s #%d %s", ts, f.Seq, f.Event)
	}
}
