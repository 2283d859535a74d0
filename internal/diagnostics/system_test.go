package diagnostics

import "testing"

func TestCollect(t *testing.T) {
	c := NewCollector()
	info := c.Collect()

	// Memory and CPU probes should work on any supported platform.
	if info.MemTotalMB <= 0 {
		t.Errorf("expected positive total memory, got %f", info.MemTotalMB)
	}
	if info.CPUThreads < 1 {
		t.Errorf("expected at least one CPU thread, got %d", info.CPUThreads)
	}
	if info.MemAvailableMB > info.MemTotalMB {
		t.Errorf("available memory %f exceeds total %f", info.MemAvailableMB, info.MemTotalMB)
	}
}

func TestCollectCachesHardware(t *testing.T) {
	c := NewCollector()
	first := c.Collect()
	second := c.Collect()

	if first.CPUModel != second.CPUModel || first.CPUCores != second.CPUCores {
		t.Errorf("hardware info should be stable across collections")
	}
}

func TestHasNvidiaGPUDoesNotPanic(t *testing.T) {
	// GPU detection is best-effort and machine-dependent, only assert that
	// it returns without error.
	_ = NewCollector().HasNvidiaGPU()
}
