// cmd/client/main.go
//
// Interactive terminal client for the uno server. Joins (or creates) a
// room, registers a username, and turns terminal commands into game
// packets:
//
//	/start             ask the host to start the game
//	/play <color> <kind>  place a card, e.g. /play Red Five
//	/draw              draw a card
//	/end               end the turn
//	/quit              leave the room
//
// Anything else is sent as chat.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/coder/websocket"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/tmatias/uno/internal/protocol"
)

func main() {
	cmd := &cli.Command{
		Name:  "uno-client",
		Usage: "terminal client for the uno server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "http://localhost:8080",
				Usage: "server base URL",
			},
			&cli.StringFlag{
				Name:  "room",
				Usage: "room id to join (a new room is created when omitted)",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "username (prompted when omitted)",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	addr := strings.TrimSuffix(cmd.String("addr"), "/")

	roomID := cmd.String("room")
	if roomID == "" {
		var err error
		roomID, err = createRoom(ctx, addr)
		if err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		pterm.Info.Printfln("Created room %s", roomID)
	}

	name := cmd.String("name")
	if name == "" {
		name, _ = pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your username").Show()
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("a username is required")
		}
	}

	wsURL := strings.Replace(addr, "http", "ws", 1) + "/room/ws/" + roomID
	c, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{"uno"},
	})
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer c.Close(websocket.StatusNormalClosure, "bye")

	if err := c.Write(ctx, websocket.MessageText, protocol.Register(name)); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	pterm.Success.Printfln("Joined room %s as %s", roomID, name)

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go readLoop(readCtx, c, cancel)

	for {
		select {
		case <-readCtx.Done():
			return nil
		default:
		}

		line, _ := pterm.DefaultInteractiveTextInput.Show()
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		frame, quit, err := frameForInput(line)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if quit {
			return nil
		}
		if err := c.Write(ctx, websocket.MessageText, frame); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
}

// frameForInput turns one line of user input into a wire frame. The quit
// result is true for /quit.
func frameForInput(line string) (frame []byte, quit bool, err error) {
	if !strings.HasPrefix(line, "/") {
		return protocol.Chat(line), false, nil
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit":
		return nil, true, nil
	case "/start":
		return protocol.Start(), false, nil
	case "/draw":
		return protocol.Draw(), false, nil
	case "/end":
		return protocol.EndTurn(), false, nil
	case "/play":
		if len(fields) != 3 {
			return nil, false, fmt.Errorf("usage: /play <color> <kind>")
		}
		return protocol.PlayCard(protocol.CardData{Color: fields[1], Kind: fields[2]}), false, nil
	default:
		return nil, false, fmt.Errorf("unknown command %s", fields[0])
	}
}

// readLoop prints server packets until the connection drops.
func readLoop(ctx context.Context, c *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				pterm.Error.Printfln("Connection closed: %v", err)
			}
			return
		}
		pkt, err := protocol.Decode(data)
		if err != nil {
			pterm.Warning.Printfln("Unreadable frame: %v", err)
			continue
		}
		printPacket(pkt)
	}
}

func printPacket(pkt protocol.Packet) {
	switch pkt.Type {
	case protocol.TypeMessage:
		sender, content, err := pkt.MessageParts()
		if err != nil {
			return
		}
		if sender == protocol.ServerSender {
			pterm.Info.Printfln("%s", content)
		} else {
			pterm.Printfln("%s: %s", pterm.LightCyan(sender), content)
		}

	case protocol.TypeError:
		code, body, err := pkt.ErrorParts()
		if err != nil {
			return
		}
		pterm.Error.Printfln("[%d] %s", code, body)

	case protocol.TypeConnect:
		_, username, err := pkt.PresenceParts()
		if err != nil {
			return
		}
		pterm.Info.Printfln("%s joined", username)

	case protocol.TypeDisconnect:
		_, username, err := pkt.PresenceParts()
		if err != nil {
			return
		}
		pterm.Info.Printfln("%s left", username)

	case protocol.TypeGameData:
		_, _, roster, err := pkt.GameDataParts()
		if err != nil {
			return
		}
		names := make([]string, 0, len(roster))
		for _, p := range roster {
			names = append(names, p.Username)
		}
		pterm.Info.Printfln("Players here: %s", strings.Join(names, ", "))

	case protocol.TypeWinUpdate:
		_, winner, others, stats, err := pkt.WinUpdateParts()
		if err != nil {
			return
		}
		pterm.Success.Printfln("%s won the game! (%d players, %ds)", winner, stats.PlayerCount, stats.DurationSecs)
		for i, name := range others {
			pterm.Printfln("  %d. %s", i+2, name)
		}

	default:
		pterm.Warning.Printfln("Unhandled packet type %s", pkt.Type)
	}
}

// createRoom asks the server for a fresh room and returns its id.
func createRoom(ctx context.Context, addr string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/room/create", nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned %s", resp.Status)
	}
	var body struct {
		RoomID string `json:"room_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.RoomID, nil
}
