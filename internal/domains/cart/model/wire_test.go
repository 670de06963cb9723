package model

import (
	"testing"

	"fake-store/go-client/internal/remote"
	"fake-store/go-client/pkg/models"
)

func TestFromRemoteMapsCountToQuantityAndKeepsTitles(t *testing.T) {
	known, _ := AddItem(NewState(), models.Product{ID: "1", Title: "Backpack", Price: 10995})
	items := FromRemote([]remote.CartLine{{ID: "1", Price: 109.95, Count: 3}, {ID: "2", Price: 22.3, Count: 1}}, known)

	if len(items) != 2 {
		t.Fatalf("unexpected item count: %d", len(items))
	}
	if items[0].Quantity != 3 || items[0].Price != 10995 || items[0].Title != "Backpack" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Price != 2230 || items[1].Title != "" {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
}

func TestToRemoteUsesCount(t *testing.T) {
	lines := ToRemote([]models.CartItem{{ID: "7", Price: 250, Quantity: 4}})
	if len(lines) != 1 || lines[0].Count != 4 || lines[0].Price != 2.5 || lines[0].ID != "7" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}
