package core

import (
	"math"
	"sort"
)

const (
	ChannelDigital  = "digital"
	ChannelPhysical = "fisica"
)

// MerchantSpend is one entry of a merchant spend ranking.
type MerchantSpend struct {
	Name   string
	Amount float64
}

// ChannelSplit holds the digital vs physical share of spend as whole percentages.
// Both values are NaN when neither channel has any spend.
type ChannelSplit struct {
	Digital  float64
	Physical float64
}

// TopMerchants returns the n merchants with the highest spend, highest first.
// Equal amounts are ordered by name so the ranking is deterministic.
func TopMerchants(spend map[string]float64, n int) []MerchantSpend {
	out := make([]MerchantSpend, 0, len(spend))
	for name, amount := range spend {
		out = append(out, MerchantSpend{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SplitChannels computes the digital and physical percentages from the
// category totals. Missing keys count as zero; 0/0 is left as NaN.
func SplitChannels(byCategory map[string]float64) ChannelSplit {
	digital := byCategory[ChannelDigital]
	physical := byCategory[ChannelPhysical]
	pct := Round(digital / (digital + physical) * 100)
	return ChannelSplit{Digital: pct, Physical: 100 - pct}
}

// AveragePredictability is the rounded mean score. An empty list yields NaN.
func AveragePredictability(scores []CategoryScore) float64 {
	var sum float64
	for _, s := range scores {
		sum += s.Score
	}
	return Round(sum / float64(len(scores)))
}

// Round rounds half-way values towards positive infinity, matching how the
// dashboard has always rounded percentages. NaN and infinities pass through.
func Round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		f++
	}
	return f
}
