package quest

import (
	"reflect"
	"testing"
)

func TestRankOf(t *testing.T) {
	tests := []struct {
		name   string
		points int64
		want   string
	}{
		{name: "zero points", points: 0, want: "🎈 Newbie"},
		{name: "just below explorer", points: 499, want: "🎈 Newbie"},
		{name: "exactly explorer", points: 500, want: "🚀 Explorer"},
		{name: "adventurer", points: 1000, want: "🌟 Adventurer"},
		{name: "pro", points: 1700, want: "🔥 Pro"},
		{name: "master threshold", points: 2000, want: "👑 Master"},
		{name: "far past master", points: 99999, want: "👑 Master"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RankOf(tt.points); got != tt.want {
				t.Errorf("RankOf(%d) = %q, want %q", tt.points, got, tt.want)
			}
		})
	}
}

func TestMilestonesCrossed(t *testing.T) {
	milestones := []int64{500, 1000, 1500, 2000}

	tests := []struct {
		name string
		old  int64
		new  int64
		want []int64
	}{
		{name: "no movement", old: 500, new: 500, want: nil},
		{name: "single crossing", old: 480, new: 520, want: []int64{500}},
		{name: "large credit crosses several", old: 480, new: 1600, want: []int64{500, 1000, 1500}},
		{name: "landing exactly on milestone", old: 990, new: 1000, want: []int64{1000}},
		{name: "starting on milestone crosses nothing old", old: 1000, new: 1400, want: nil},
		{name: "below first milestone", old: 0, new: 499, want: nil},
		{name: "everything at once", old: 0, new: 2000, want: []int64{500, 1000, 1500, 2000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MilestonesCrossed(tt.old, tt.new, milestones)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MilestonesCrossed(%d, %d) = %v, want %v", tt.old, tt.new, got, tt.want)
			}
		})
	}
}
