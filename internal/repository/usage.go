package repository

import (
	"context"
	"math"
	"strconv"
)

// Usage describes how much the store holds. It is diagnostic only.
type Usage struct {
	Available      bool   `json:"available"`
	ItemCount      int    `json:"itemCount"`
	TotalSizeBytes int64  `json:"totalSize"`
	FormattedSize  string `json:"formattedSize,omitempty"`
}

// UsageInfo counts stored items and their combined key and value sizes.
func (r *Repository) UsageInfo(ctx context.Context) Usage {
	if !r.IsAvailable(ctx) {
		return Usage{Available: false}
	}
	u, err := r.usage(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("usage info")
		return Usage{Available: false}
	}
	return u
}

func (r *Repository) usage(ctx context.Context) (Usage, error) {
	keys, err := r.kv.Keys(ctx)
	if err != nil {
		return Usage{}, err
	}
	u := Usage{Available: true}
	for _, k := range keys {
		v, err := r.kv.Get(ctx, k)
		if err != nil {
			continue
		}
		u.ItemCount++
		u.TotalSizeBytes += int64(len(k) + len(v))
	}
	u.FormattedSize = FormatBytes(u.TotalSizeBytes)
	return u, nil
}

// FormatBytes renders a byte count with binary units and at most two decimals.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	v, i := float64(n), 0
	for v >= 1024 && i < len(sizes)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizes[i]
}
