package seatmap

import (
	"fmt"
	"strings"
	"time"
)

const DefaultNoticeDuration = 2 * time.Second

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeWarning
)

// Notice is a short-lived, non-blocking message for the user. It never
// affects reconciliation.
type Notice struct {
	Text     string
	Kind     NoticeKind
	Duration time.Duration
}

func changeNotice(change Change, seat PricedSeat, ttl time.Duration) Notice {
	if change.Kind == Removed {
		return Notice{Text: fmt.Sprintf("Seat %d removed", change.SeatNumber), Kind: NoticeInfo, Duration: ttl}
	}
	return Notice{
		Text:     fmt.Sprintf("Seat %d added (%s • %s)", change.SeatNumber, seat.SeatType, seat.Price.StringFixed(2)),
		Kind:     NoticeInfo,
		Duration: ttl,
	}
}

func droppedNotice(seats []int, ttl time.Duration) Notice {
	labels := make([]string, len(seats))
	for i, n := range seats {
		labels[i] = fmt.Sprintf("%d", n)
	}
	text := fmt.Sprintf("Seat %s was taken by another buyer and removed from your selection", labels[0])
	if len(seats) > 1 {
		text = fmt.Sprintf("Seats %s were taken by another buyer and removed from your selection", strings.Join(labels, ", "))
	}
	return Notice{Text: text, Kind: NoticeWarning, Duration: ttl}
}
