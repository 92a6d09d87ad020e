package probe

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/hostmond/hostmond/internal/state"
)

// flexInt64 tolerates lsblk versions that quote byte sizes.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt64(v)
	return nil
}

type lsblkDevice struct {
	Name       string    `json:"name"`
	Size       flexInt64 `json:"size"`
	Type       string    `json:"type"`
	Mountpoint string    `json:"mountpoint"`
	Model      string    `json:"model"`
	Serial     string    `json:"serial"`
}

type lsblkOutput struct {
	Blockdevices []lsblkDevice `json:"blockdevices"`
}

func (c *Collector) collectDisks(ctx context.Context) map[string]state.DiskRecord {
	disks := make(map[string]state.DiskRecord)

	lctx, cancel := ctxWithTimeout(ctx, 5*time.Second)
	out, err := runCommand(lctx, "lsblk", "-J", "-b", "-o", "NAME,SIZE,TYPE,MOUNTPOINT,MODEL,SERIAL")
	cancel()
	if err != nil {
		c.logger.Warn("lsblk failed", "error", err)
		return disks
	}

	devices, err := parseLsblk(out)
	if err != nil {
		c.logger.Warn("lsblk parse failed", "error", err)
		return disks
	}

	for _, dev := range devices {
		rec := state.DiskRecord{
			SizeBytes:   int64(dev.Size),
			Model:       dev.Model,
			Serial:      dev.Serial,
			SmartStatus: state.SmartUnknown,
			Mountpoint:  dev.Mountpoint,
		}
		if rec.Model == "" {
			rec.Model = "Unknown"
		}

		hctx, cancel := ctxWithTimeout(ctx, 3*time.Second)
		if hout, err := runCommand(hctx, "smartctl", "-H", "/dev/"+dev.Name); err == nil {
			rec.SmartStatus = parseSmartHealth(hout)
		}
		cancel()

		actx, cancel := ctxWithTimeout(ctx, 3*time.Second)
		if aout, err := runCommand(actx, "smartctl", "-A", "/dev/"+dev.Name); err == nil {
			if temp, ok := parseSmartTemperature(aout); ok {
				rec.TemperatureC = &temp
			}
		}
		cancel()

		disks[dev.Name] = rec
	}

	return disks
}

// parseLsblk keeps only whole disks, dropping partitions and loop
// devices.
func parseLsblk(out string) ([]lsblkDevice, error) {
	var parsed lsblkOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, err
	}

	var disks []lsblkDevice
	for _, dev := range parsed.Blockdevices {
		if dev.Type == "disk" {
			disks = append(disks, dev)
		}
	}
	return disks, nil
}

func parseSmartHealth(out string) string {
	switch {
	case strings.Contains(out, "PASSED"):
		return state.SmartPassed
	case strings.Contains(out, "FAILED"):
		return state.SmartFailed
	default:
		return state.SmartUnknown
	}
}

// parseSmartTemperature reads the raw value column of the temperature
// attribute rows.
func parseSmartTemperature(out string) (int, bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Temperature_Celsius") && !strings.Contains(line, "Airflow_Temperature") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 10 {
			continue
		}
		if v, err := strconv.Atoi(parts[9]); err == nil {
			return v, true
		}
	}
	return 0, false
}
