package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"pasajes-cli/store"
)

const otherBus = "Other bus..."

// promptBus offers the recent buses first and falls back to typing an id.
func promptBus() (store.RecentBus, error) {
	recent, _ := store.LoadRecentBuses()
	if len(recent) > 0 {
		busByLabel := make(map[string]store.RecentBus, len(recent))
		for _, bus := range recent {
			busByLabel[recentBusLabel(bus)] = bus
		}
		labels := maps.Keys(busByLabel)
		slices.Sort(labels)
		labels = append(labels, otherBus)

		selectBus := promptui.Select{
			Label: "Select Bus",
			Items: labels,
			Size:  10,
		}
		_, label, err := selectBus.Run()
		if err != nil {
			return store.RecentBus{}, err
		}
		if bus, ok := busByLabel[label]; ok {
			return bus, nil
		}
	}

	typeBus := promptui.Prompt{
		Label:    "Bus id",
		Validate: validateBusID,
	}
	busID, err := typeBus.Run()
	if err != nil {
		return store.RecentBus{}, err
	}
	return store.RecentBus{BusID: strings.TrimSpace(busID)}, nil
}

func validateBusID(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("bus id is required")
	}
	return nil
}

func recentBusLabel(bus store.RecentBus) string {
	label := fmt.Sprintf("Bus %s", bus.BusID)
	if bus.RouteID != "" {
		label += fmt.Sprintf(" • route %s", bus.RouteID)
	}
	if bus.WorksheetID != "" {
		label += fmt.Sprintf(" • worksheet %s", bus.WorksheetID)
	}
	return label
}
