package audio

import (
	"reflect"
	"testing"
	"time"
)

func TestNewFFmpeg(t *testing.T) {
	tests := []struct {
		command string
		timeout time.Duration
		want    []string
		wantTO  time.Duration
		wantErr bool
	}{
		{"", 0, []string{"ffmpeg"}, 20 * time.Second, false},
		{"ffmpeg -loglevel error", time.Second, []string{"ffmpeg", "-loglevel", "error"}, time.Second, false},
		{`"/opt/my tools/ffmpeg" -hide_banner`, 0, []string{"/opt/my tools/ffmpeg", "-hide_banner"}, 20 * time.Second, false},
		{`ffmpeg "unterminated`, 0, nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			f, err := NewFFmpeg(tt.command, tt.timeout)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(f.cmd, tt.want) || f.timeout != tt.wantTO {
				t.Fatalf("cmd = %q timeout = %v", f.cmd, f.timeout)
			}
		})
	}
}
