package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将图层几何快照输出为 JSON，便于调试或可视化。
func WriteDebugJSON(snap Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
