package notification

import (
	"sync"
	"testing"

	logx "mcnotify/pkg/logx"
)

func TestRegistryReplaceDropsMissingCategories(t *testing.T) {
	t.Parallel()
	r := NewRegistry(map[Category]DeliverySettings{
		CategoryXPGain:  {SendToActionBar: true},
		CategoryHoliday: {},
	}, logx.Nop())

	r.Replace(map[Category]DeliverySettings{CategoryXPGain: {SendToChat: true}})

	if got := r.Get(CategoryXPGain); got != (DeliverySettings{SendToChat: true}) {
		t.Fatalf("Get(xp) = %+v", got)
	}
	if got := r.Get(CategoryHoliday); got != DefaultSettings {
		t.Fatalf("Get(holiday) = %+v, want default", got)
	}
	if n := len(r.Snapshot()); n != 1 {
		t.Fatalf("Snapshot len = %d, want 1", n)
	}
}

func TestRegistrySnapshotIsCopied(t *testing.T) {
	t.Parallel()
	seed := map[Category]DeliverySettings{CategoryXPGain: {SendToChat: true}}
	r := NewRegistry(seed, logx.Nop())
	seed[CategoryXPGain] = DeliverySettings{}

	if got := r.Get(CategoryXPGain); !got.SendToChat {
		t.Fatal("registry aliases the seed map")
	}
}

func TestRegistryConcurrentGetSeesWholeValues(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil, logx.Nop())
	on := DeliverySettings{SendToChat: true, SendToActionBar: true}
	off := DeliverySettings{}
	r.Set(CategoryXPGain, on)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if (i+j)%2 == 0 {
					r.Set(CategoryXPGain, on)
				} else {
					r.Set(CategoryXPGain, off)
				}
			}
		}(i)
	}
	errs := make(chan DeliverySettings, 1)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if got := r.Get(CategoryXPGain); got != on && got != off {
					select {
					case errs <- got:
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	if got, ok := <-errs; ok {
		t.Fatalf("observed torn settings %+v", got)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"level_up_message", CategoryLevelUp, true},
		{"LEVEL_UP_MESSAGE", CategoryLevelUp, true},
		{" xp_gain ", CategoryXPGain, true},
		{"nope", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseCategory(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	for _, c := range Categories() {
		if !c.Known() {
			t.Fatalf("%s not Known", c)
		}
	}
	if Category("nope").Known() {
		t.Fatal("unknown category reported Known")
	}
}

func TestSortedCategories(t *testing.T) {
	t.Parallel()
	got := SortedCategories(map[Category]DeliverySettings{CategoryXPGain: {}, CategoryAbilityOff: {}})
	if len(got) != 2 || got[0] > got[1] {
		t.Fatalf("SortedCategories = %v", got)
	}
}
