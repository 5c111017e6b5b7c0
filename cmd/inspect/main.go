// Command inspect prints the users and conversations held by a store, for debugging.
package main

import (
	"dm-lab/repositories"
	"dm-lab/storage"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("Error while loading config: ", err)
	}
	backend := flag.String("backend", cfg.StoreBackend, "Store backend (file or badger)")
	flag.Parse()

	logger := logs.GetLoggerFromLevel(slog.LevelError)
	store, err := openStore(*backend, cfg, logger)
	if err != nil {
		log.Fatal("Error while opening store: ", err)
	}
	defer store.Close()

	users, err := storage.Load[repositories.DiskUser](store, storage.Users)
	if err != nil {
		log.Fatal(err)
	}
	messages, err := storage.Load[repositories.DiskMessage](store, storage.Messages)
	if err != nil {
		log.Fatal(err)
	}

	render(os.Stdout, cfg.Colours, users, messages)
}

func openStore(backend string, cfg Config, log *slog.Logger) (storage.Store, error) {
	switch backend {
	case "file":
		return storage.NewFileStore(cfg.DataDir, log, storage.Options{}), nil
	case "badger":
		return storage.OpenBadgerStore(cfg.BadgerFilepath, log, storage.Options{})
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func header(w io.Writer, colours bool, title string) {
	line := fmt.Sprintf("  ====== %s ======", title)
	if colours {
		line = color.New(color.BgBlack, color.FgGreen).Render(line)
	}
	fmt.Fprintln(w, line)
}

func newTable(w io.Writer, columns []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// render prints one table of users and one of conversations. Password hashes are never shown.
func render(w io.Writer, colours bool, users []repositories.DiskUser, messages []repositories.DiskMessage) {
	names := lo.SliceToMap(users, func(u repositories.DiskUser) (string, string) {
		return u.ID, u.Username
	})

	header(w, colours, "Users")
	table := newTable(w, []string{"ID", "Username", "Full name", "Created", "Online"})
	for _, u := range users {
		table.Append([]string{u.ID, u.Username, u.FullName,
			u.CreatedAt.Format("2006-01-02 15:04:05"), strconv.FormatBool(u.IsOnline)})
	}
	table.Render()

	header(w, colours, "Conversations")
	conversations := lo.GroupBy(messages, func(m repositories.DiskMessage) string {
		a, b := m.SenderID, m.ReceiverID
		if a > b {
			a, b = b, a
		}
		return a + "|" + b
	})
	keys := lo.Keys(conversations)
	sort.Strings(keys)

	table = newTable(w, []string{"Participants", "Messages", "Last"})
	for _, key := range keys {
		thread := conversations[key]
		last := lo.MaxBy(thread, func(a, b repositories.DiskMessage) bool {
			return a.Timestamp.After(b.Timestamp)
		})
		first := thread[0]
		table.Append([]string{
			displayName(names, first.SenderID) + " <-> " + displayName(names, first.ReceiverID),
			strconv.Itoa(len(thread)),
			last.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return "unknown(" + id + ")"
}
