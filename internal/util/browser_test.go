package util

import "testing"

func TestBrowserCommands(t *testing.T) {
	tests := []struct {
		goos  string
		first string
		count int
	}{
		{"windows", "rundll32", 2},
		{"darwin", "open", 1},
		{"linux", "xdg-open", 4},
		{"freebsd", "xdg-open", 4},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmds := browserCommands(tt.goos, "http://localhost:1")
			if len(cmds) != tt.count {
				t.Fatalf("len = %d, want %d", len(cmds), tt.count)
			}
			if cmds[0][0] != tt.first {
				t.Errorf("first = %s, want %s", cmds[0][0], tt.first)
			}
			for _, c := range cmds {
				if c[len(c)-1] != "http://localhost:1" {
					t.Errorf("url not last arg: %v", c)
				}
			}
		})
	}
}
