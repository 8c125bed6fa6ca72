package debug

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestEnableFileWritesCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := EnableFile(path); err != nil {
		t.Fatalf("EnableFile: %v", err)
	}
	Log("clock", "tick=%d", 42)
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "cat=clock") || !strings.Contains(out, "tick=42") {
		t.Fatalf("log missing entry: %q", out)
	}
}

func TestLogDisabledWithoutHooksIsSilent(t *testing.T) {
	Disable()
	hook := test.NewLocal(Logger())
	defer Logger().ReplaceHooks(make(logrus.LevelHooks))

	Log("combo", "unrecognized %v", []int{1, 2})
	Warn("pattern", errors.New("disk full"), "save slot %d", 3)

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("entries: got=%d want=2", len(entries))
	}
	if entries[0].Data["cat"] != "combo" {
		t.Fatalf("category: got=%v", entries[0].Data["cat"])
	}
	if entries[1].Level != logrus.WarnLevel || entries[1].Message != "save slot 3" {
		t.Fatalf("warn entry mismatch: %+v", entries[1])
	}
}

func TestLogEveryThrottles(t *testing.T) {
	hook := test.NewLocal(Logger())
	defer Logger().ReplaceHooks(make(logrus.LevelHooks))

	for i := 0; i < 10; i++ {
		LogEvery(4, "pulse", "clock")
	}
	if got := len(hook.AllEntries()); got != 2 {
		t.Fatalf("throttled entries: got=%d want=2", got)
	}
}
