package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"glass-radar.klederson.com/internal/bluetooth"
	"glass-radar.klederson.com/internal/config"
	"glass-radar.klederson.com/internal/detect"
	"glass-radar.klederson.com/internal/fingerprint"
	"glass-radar.klederson.com/internal/ui"
)

var (
	styleHeading = lipgloss.NewStyle().Foreground(ui.ColorMatrixGreen).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(ui.ColorMidGreen)
)

func newClassifyCmd() *cobra.Command {
	var (
		mfg   string
		name  string
		uuids []string
		addr  string
		rssi  int
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one advertisement offline",
		Example: `  glass-radar classify --mfg AB010215
  glass-radar classify --name "Ray-Ban Meta 01" --rssi -80
  glass-radar classify --uuid FD5F --addr 7C:2A:9E:00:11:22`,
		Args: cobra.NoArgs,
	}
	cfgFlags := bindConfig(cmd)
	cmd.Flags().StringVar(&mfg, "mfg", "", "Manufacturer data in hex, company ID first (little-endian)")
	cmd.Flags().StringVar(&name, "name", "", "Advertised local name")
	cmd.Flags().StringSliceVar(&uuids, "uuid", nil, "16-bit service UUID in hex (repeatable)")
	cmd.Flags().StringVar(&addr, "addr", "", "Device address")
	cmd.Flags().IntVar(&rssi, "rssi", -60, "Signal strength (dBm)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cfgFlags)
		if err != nil {
			return err
		}
		db, err := fingerprint.Load(cfg.Database.Path)
		if err != nil {
			return err
		}
		adv, err := buildAdvertisement(mfg, name, uuids, addr, rssi)
		if err != nil {
			return err
		}

		res, ok := detect.NewMatcher(db, cfg.TierMask()).Classify(adv)
		printClassification(cmd.OutOrStdout(), adv, res, ok, cfg.RSSI.Threshold)
		return nil
	}
	return cmd
}

func buildAdvertisement(mfg, name string, uuids []string, addr string, rssi int) (bluetooth.Advertisement, error) {
	adv := bluetooth.Advertisement{RSSI: rssi, Name: name}

	if mfg != "" {
		clean := strings.NewReplacer(" ", "", ":", "", "-", "").Replace(strings.TrimPrefix(strings.ToLower(mfg), "0x"))
		data, err := hex.DecodeString(clean)
		if err != nil {
			return adv, fmt.Errorf("invalid --mfg %q: %w", mfg, err)
		}
		adv.ManufacturerData = data
	}

	for _, u := range uuids {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(u), "0x"), 16, 16)
		if err != nil {
			return adv, fmt.Errorf("invalid --uuid %q: %w", u, err)
		}
		adv.ServiceUUIDs = append(adv.ServiceUUIDs, uint16(v))
	}

	if addr != "" {
		mac, err := bluetooth.ParseMAC(addr)
		if err != nil {
			return adv, fmt.Errorf("invalid --addr %q: %w", addr, err)
		}
		adv.Address = mac
	}
	return adv, nil
}

func printClassification(w io.Writer, adv bluetooth.Advertisement, res detect.Result, ok bool, gate int) {
	if !ok {
		fmt.Fprintln(w, styleMuted.Render("no match"))
		if id, has := adv.CompanyID(); has {
			fmt.Fprintf(w, "  company  0x%04X %s\n", id, bluetooth.LookupManufacturer(id))
		}
		return
	}

	fmt.Fprintf(w, "%s %s\n", styleHeading.Render("MATCH"), ui.TierStyle(res.Tier).Render(res.Product))
	fmt.Fprintf(w, "  company  %s\n", res.Company)
	fmt.Fprintf(w, "  method   %s\n", res.Method)
	fmt.Fprintf(w, "  tier     %s\n", res.Tier)
	fmt.Fprintf(w, "  camera   %s\n", yesNo(res.HasCamera))
	fmt.Fprintf(w, "  reason   %s\n", res.Reason)
	if adv.RSSI < gate {
		fmt.Fprintf(w, "  %s\n", styleMuted.Render(fmt.Sprintf("below RSSI gate (%d < %d dBm), would be ignored", adv.RSSI, gate)))
	}
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "List the fingerprint database",
		Args:  cobra.NoArgs,
	}
	cfgFlags := bindConfig(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cfgFlags)
		if err != nil {
			return err
		}
		db, err := fingerprint.Load(cfg.Database.Path)
		if err != nil {
			return err
		}
		printDatabase(cmd.OutOrStdout(), db, cfg.TierMask())
		return nil
	}
	return cmd
}

func printDatabase(w io.Writer, db *fingerprint.Database, tiers detect.TierMask) {
	fmt.Fprintln(w, styleHeading.Render("COMPANY IDS"))
	for _, c := range db.Companies {
		state := ""
		if !tiers.Enabled(c.Tier) {
			state = styleMuted.Render(" (disabled)")
		}
		fmt.Fprintf(w, "  0x%04X  %-6s  %-7s  %s / %s%s\n",
			c.ID, ui.TierStyle(c.Tier).Render(fmt.Sprintf("%-6s", c.Tier)), cameraFlag(c.HasCamera), c.Company, c.Product, state)
	}

	fmt.Fprintln(w, styleHeading.Render("PAYLOAD SIGNATURES"))
	for _, p := range db.Payloads {
		fmt.Fprintf(w, "  0x%04X  %-24s  %s\n", p.CompanyID, strings.ToUpper(hex.EncodeToString(p.Pattern)), p.Description)
	}

	fmt.Fprintln(w, styleHeading.Render("SERVICE UUIDS"))
	for _, s := range db.Services {
		fmt.Fprintf(w, "  0x%04X  %s  %s\n", s.UUID, s.Owner, styleMuted.Render(s.Description))
	}

	fmt.Fprintln(w, styleHeading.Render("NAME PATTERNS"))
	for _, n := range db.Names {
		fmt.Fprintf(w, "  %-16q  %-7s  %s\n", n.Pattern, cameraFlag(n.HasCamera), n.Product)
	}

	fmt.Fprintln(w, styleHeading.Render("OUI PREFIXES"))
	for _, o := range db.OUIs {
		fmt.Fprintf(w, "  %s  %s\n", o.Prefix, o.Vendor)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, styleMuted.Render(db.Summary()))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, config.AppVersion)
		},
	}
}

func cameraFlag(on bool) string {
	if on {
		return "camera"
	}
	return "-"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
