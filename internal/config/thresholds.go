package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MorseWayne/stockroom/internal/domain"
)

// thresholdsFile 阈值文件格式：{"Products": {"Electronics": 5, ...}}
type thresholdsFile struct {
	Products map[string]int `json:"Products"`
}

// LoadThresholds 从JSON文件读取按类型的低库存阈值
func LoadThresholds(path string) (domain.Thresholds, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open thresholds file: %w", err)
	}
	defer f.Close()

	return ParseThresholds(f)
}

// ParseThresholds 解析阈值JSON，类型名大小写不敏感，阈值不能为负
func ParseThresholds(r io.Reader) (domain.Thresholds, error) {
	var raw thresholdsFile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode thresholds: %w", err)
	}
	if raw.Products == nil {
		return nil, fmt.Errorf("decode thresholds: missing \"Products\" section")
	}

	out := make(domain.Thresholds, len(raw.Products))
	for name, v := range raw.Products {
		t, err := domain.ParseProductType(name)
		if err != nil {
			return nil, fmt.Errorf("thresholds: %w", err)
		}
		if v < 0 {
			return nil, fmt.Errorf("thresholds: %s must not be negative", name)
		}
		out[t] = v
	}
	return out, nil
}
