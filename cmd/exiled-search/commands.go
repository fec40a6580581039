package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"exiled-search/internal/app"
	"exiled-search/internal/input"
	"exiled-search/internal/ipc"
	"exiled-search/internal/item"
	"exiled-search/internal/rofi"
	"exiled-search/internal/stats"
	"exiled-search/internal/storage"
	"exiled-search/internal/ui"
	"exiled-search/internal/wm"
	"exiled-search/pkg/logger"
)

const historyRetention = 90 * 24 * time.Hour

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readText reads item text from a file argument, or stdin for "-" or none.
func readText(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read item file: %w", err)
	}
	return string(b), nil
}

func (e *env) capture() (*input.Input, error) {
	manager, err := wm.NewManager(e.log)
	if err != nil {
		return nil, err
	}
	return input.NewInput(manager, input.RobotKeyboard(),
		e.cfg.GetWindowClasses(), e.cfg.GetWindowTitles(), e.cfg.GetCopyHotkey(), e.log), nil
}

func (e *env) picker(store *storage.DB) app.StatPicker {
	colorblind := false
	if store != nil {
		if v, err := store.GetBool(storage.PrefColorblindMode, false); err == nil {
			colorblind = v
		}
	}
	p := rofi.NewStatPicker(colorblind, e.log)
	return func(prepared *app.Prepared) ([]string, error) {
		return p.Pick(prepared.Preview)
	}
}

func (e *env) scale(flag int) int {
	if flag > 0 {
		return flag
	}
	return e.cfg.GetScalePercent()
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse item text and show how each stat resolves",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			text, err := readText(args)
			if err != nil {
				return err
			}

			out := struct {
				Format  item.FormatResult   `json:"format"`
				Item    *item.ParsedItem    `json:"item,omitempty"`
				Preview []stats.PreviewLine `json:"preview,omitempty"`
			}{Format: item.ValidateFormat(text)}

			if out.Format.IsValid {
				registry := stats.DefaultRegistry()
				out.Item = item.Parse(text)
				lines := registry.Combine(out.Item.ImplicitStats, out.Item.ExplicitStats)
				out.Preview = registry.Preview(lines, out.Item.ItemClass)
			}
			if err := printJSON(out); err != nil {
				return err
			}
			return out.Format.Err()
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the trade site has every control the search needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			engine, err := e.openEngine(stats.DefaultRegistry(), e.delays())
			if err != nil {
				return err
			}
			report := engine.Validate(e.ctx)
			if err := printJSON(report); err != nil {
				return err
			}
			return report.Err()
		},
	}
}

func searchCmd() *cobra.Command {
	var (
		clipboard bool
		scale     int
		profile   string
		pick      bool
	)

	cmd := &cobra.Command{
		Use:   "search [file|-]",
		Short: "Fill the trade search for an item",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			var text string
			if clipboard {
				in, err := e.capture()
				if err != nil {
					return err
				}
				if text, err = in.CaptureItem(e.ctx); err != nil {
					return err
				}
			} else if text, err = readText(args); err != nil {
				return err
			}

			store, err := e.openStore()
			if err != nil {
				e.log.Warn("History disabled", "error", err)
				store = nil
			}

			req := app.SearchRequest{Text: text, Scale: e.scale(scale), Profile: profile}
			if pick {
				req.Pick = e.picker(store)
			}

			out, err := e.pipeline(store).Search(e.ctx, req)
			if err != nil {
				return err
			}
			if err := printJSON(out); err != nil {
				return err
			}
			if !out.Result.Success {
				return errors.New(out.Result.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clipboard, "clipboard", false, "copy the hovered item from the game instead of reading a file")
	cmd.Flags().IntVar(&scale, "scale", 0, "percentage of each stat value to search for (default from config)")
	cmd.Flags().StringVar(&profile, "profile", "", "delay profile: fast, normal or slow")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose stats in rofi before searching")
	return cmd
}

func daemonCmd() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Serve search requests on a Unix socket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(true)
			if err != nil {
				return err
			}
			defer e.close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			if err := store.Cleanup(historyRetention); err != nil {
				e.log.Warn("History cleanup failed", "error", err)
			}

			var source app.ItemSource
			if in, err := e.capture(); err != nil {
				e.log.Warn("Item capture unavailable, requests must carry text", "error", err)
			} else {
				source = in
			}

			var picker app.StatPicker
			if pick {
				picker = e.picker(store)
			}

			daemon := app.NewDaemon(e.pipeline(store), source, e.cfg.GetScalePercent(), picker)
			return ipc.NewServer(e.cfg.GetSocketPath(), daemon, e.log).Serve(e.ctx)
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "choose stats in rofi for every search")
	return cmd
}

func sendCmd() *cobra.Command {
	var (
		file    string
		scale   int
		profile string
	)

	cmd := &cobra.Command{
		Use:       "send <search|validate|status>",
		Short:     "Send a command to a running daemon",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{ipc.CommandSearch, ipc.CommandValidate, ipc.CommandStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			req := ipc.Request{Command: args[0], Scale: scale, Profile: profile}
			if file != "" {
				if req.Text, err = readText([]string{file}); err != nil {
					return err
				}
			}

			resp, err := ipc.SendCommand(e.cfg.GetSocketPath(), req, e.log)
			if err != nil {
				return fmt.Errorf("is the daemon running? %w", err)
			}
			if err := printJSON(resp); err != nil {
				return err
			}
			if resp.Status != ipc.StatusSuccess {
				return errors.New(resp.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "item text file for search (default: copy from the game)")
	cmd.Flags().IntVar(&scale, "scale", 0, "percentage of each stat value to search for")
	cmd.Flags().StringVar(&profile, "profile", "", "delay profile: fast, normal or slow")
	return cmd
}

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the search window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buffer := ui.NewLogBuffer()
			e, err := setup(false, buffer)
			if err != nil {
				return err
			}
			defer e.close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			// --debug wins over the level saved from the window
			if lvl, ok, err := store.Get(storage.PrefLogLevel); err == nil && ok && !debug {
				e.log.SetLevel(logger.ParseLevel(lvl))
			}

			a := fyneapp.NewWithID("exiled-search")
			var panel *ui.LogPanel
			if debug {
				panel = ui.NewLogPanel(a, buffer)
			}
			ui.New(a, e.pipeline(store), store, panel, e.log).Run()
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			records, err := store.RecentSearches(limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tITEM\tCLASS\tSCALE\tPROFILE\tRESULT")
			for _, r := range records {
				result := "ok"
				if !r.Success {
					result = r.Error
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%s\t%s\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.ItemName, r.ItemClass, r.ScalePercent, r.DelayProfile, result)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of searches to show")
	return cmd
}

func bindCmd() *cobra.Command {
	var (
		mods   string
		key    string
		unbind bool
	)

	cmd := &cobra.Command{
		Use:   "bind",
		Short: "Register a Hyprland keybinding that sends a search to the daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(false)
			if err != nil {
				return err
			}
			defer e.close()

			h, err := wm.NewHyprland(e.log)
			if err != nil {
				return err
			}
			if unbind {
				return h.UnbindKey(mods, key)
			}

			self, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to locate executable: %w", err)
			}
			command := self + " send " + ipc.CommandSearch
			if configPath != "" {
				command += " --config " + configPath
			}
			if err := h.BindKey(mods, key, command); err != nil {
				return err
			}
			fmt.Printf("Bound %s+%s to %q\n", mods, key, command)
			return nil
		},
	}

	cmd.Flags().StringVar(&mods, "mods", "CTRL ALT", "modifier keys")
	cmd.Flags().StringVar(&key, "key", "D", "key")
	cmd.Flags().BoolVar(&unbind, "unbind", false, "remove the binding instead")
	return cmd
}
