// Package shell is an interactive console for the HAL. It talks to the HAL
// only over the bus, so it sees exactly what any other client would.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"ina260-go/bus"
	"ina260-go/services/hal"
	"ina260-go/types"

	"github.com/chzyer/readline"
)

// DefaultTimeout bounds each bus request made by a command.
const DefaultTimeout = 2 * time.Second

type Shell struct {
	conn    *bus.Connection
	rl      *readline.Instance
	timeout time.Duration
	closed  sync.Once
}

// New creates the console and its line editor.
func New(conn *bus.Connection) (*Shell, error) {
	s := &Shell{conn: conn, timeout: DefaultTimeout}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ina260> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s.rl = rl
	return s, nil
}

// Stdout returns a writer that coordinates with the prompt. Route log output
// here while the shell is running.
func (s *Shell) Stdout() io.Writer { return s.rl.Stdout() }

// Run reads commands until quit, EOF or ctx is done. Leaving the shell
// calls cancel.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.close()
	stop := context.AfterFunc(ctx, s.close) // unblocks Readline
	defer stop()
	out := s.rl.Stdout()
	fmt.Fprintln(out, "type 'help' for commands")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(out, "Exiting...")
			cancel()
			return
		}
		if !s.Exec(ctx, line, out) {
			fmt.Fprintln(out, "Exiting...")
			cancel()
			return
		}
	}
}

func (s *Shell) close() { s.closed.Do(func() { _ = s.rl.Close() }) }

// Exec runs one command line, writing its output to w. It returns false
// when the line asks the shell to exit.
func (s *Shell) Exec(ctx context.Context, line string, w io.Writer) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "help", "?":
		printHelp(w)
	case "ls":
		s.cmdList(ctx, args, w)
	case "cat":
		s.cmdCat(ctx, args, w)
	case "bind":
		s.cmdControl(ctx, "bind", args, w)
	case "unbind":
		s.cmdControl(ctx, "unbind", args, w)
	case "quit", "exit", "q":
		return false
	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, `Commands:
  ls                 - list bound and configured devices
  ls <dev>           - list a device's attributes
  cat <dev> [attr]   - read one attribute, or all of them
  bind <dev>         - bind a configured device
  unbind <dev>       - unbind a device
  quit               - leave the shell`)
}

// ---- commands ----

func (s *Shell) cmdList(ctx context.Context, args []string, w io.Writer) {
	list, err := s.list(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if len(args) == 0 {
		bound := make(map[string]bool, len(list.Bound))
		for _, d := range list.Bound {
			bound[d.ID] = true
			fmt.Fprintf(w, "%-12s %-8s %s@0x%02x  bind=%s\n", d.ID, d.Driver, d.Bus, d.Addr, d.BindID)
		}
		for _, id := range list.Configured {
			if !bound[id] {
				fmt.Fprintf(w, "%-12s (unbound)\n", id)
			}
		}
		return
	}
	d, ok := findDevice(list, args[0])
	if !ok {
		fmt.Fprintf(w, "No such device: %s\n", args[0])
		return
	}
	for _, name := range d.Attributes {
		fmt.Fprintf(w, "r--r--r--  %s\n", name)
	}
}

func (s *Shell) cmdCat(ctx context.Context, args []string, w io.Writer) {
	if len(args) == 0 {
		fmt.Fprintln(w, "Usage: cat <dev> [attr]")
		return
	}
	if len(args) >= 2 {
		v, err := s.read(ctx, args[0], args[1])
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
		fmt.Fprint(w, v)
		return
	}
	list, err := s.list(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	d, ok := findDevice(list, args[0])
	if !ok {
		fmt.Fprintf(w, "No such device: %s\n", args[0])
		return
	}
	for _, name := range d.Attributes {
		v, err := s.read(ctx, d.ID, name)
		if err != nil {
			fmt.Fprintf(w, "%s: error: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s: %s", name, v)
	}
}

func (s *Shell) cmdControl(ctx context.Context, verb string, args []string, w io.Writer) {
	if len(args) != 1 {
		fmt.Fprintf(w, "Usage: %s <dev>\n", verb)
		return
	}
	var payload any = types.BindRequest{ID: args[0]}
	if verb == "unbind" {
		payload = types.UnbindRequest{ID: args[0]}
	}
	reply, err := s.request(ctx, hal.TopicCtrl(verb), payload)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	switch r := reply.(type) {
	case types.OKReply:
		fmt.Fprintln(w, "OK")
	case types.ErrorReply:
		fmt.Fprintf(w, "Error: %s\n", r.Error)
	default:
		fmt.Fprintf(w, "Error: unexpected reply %T\n", reply)
	}
}

// ---- bus helpers ----

func (s *Shell) request(ctx context.Context, topic bus.Topic, payload any) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	m, err := s.conn.RequestWait(ctx, s.conn.NewMessage(topic, payload, false))
	if err != nil {
		return nil, err
	}
	return m.Payload, nil
}

func (s *Shell) list(ctx context.Context) (types.DeviceList, error) {
	reply, err := s.request(ctx, hal.TopicCtrl("list"), nil)
	if err != nil {
		return types.DeviceList{}, err
	}
	l, ok := reply.(types.DeviceList)
	if !ok {
		return types.DeviceList{}, fmt.Errorf("unexpected reply %T", reply)
	}
	return l, nil
}

func (s *Shell) read(ctx context.Context, dev, name string) (string, error) {
	reply, err := s.request(ctx, hal.TopicAttrRead(dev, name), nil)
	if err != nil {
		return "", err
	}
	r, ok := reply.(types.AttrReply)
	if !ok {
		return "", fmt.Errorf("unexpected reply %T", reply)
	}
	if !r.OK {
		return "", errors.New(r.Error)
	}
	return r.Value, nil
}

func findDevice(l types.DeviceList, id string) (types.DeviceInfo, bool) {
	for _, d := range l.Bound {
		if d.ID == id {
			return d, true
		}
	}
	return types.DeviceInfo{}, false
}

// ---- completion ----

func (s *Shell) completer() readline.AutoCompleter {
	devices := func(string) []string {
		l, err := s.list(context.Background())
		if err != nil {
			return nil
		}
		return l.Configured
	}
	attrs := func(line string) []string {
		f := strings.Fields(line)
		if len(f) < 2 {
			return nil
		}
		l, err := s.list(context.Background())
		if err != nil {
			return nil
		}
		d, _ := findDevice(l, f[1])
		return d.Attributes
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("ls", readline.PcItemDynamic(devices)),
		readline.PcItem("cat", readline.PcItemDynamic(devices, readline.PcItemDynamic(attrs))),
		readline.PcItem("bind", readline.PcItemDynamic(devices)),
		readline.PcItem("unbind", readline.PcItemDynamic(devices)),
		readline.PcItem("quit"),
	)
}
