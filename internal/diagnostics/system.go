// Package diagnostics gathers host information relevant to grading capacity:
// free memory for loading the embedding model, disk headroom for the grade
// store and GPU presence for ONNX Runtime acceleration.
package diagnostics

import (
	"runtime"
	"strings"
	"sync"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// GPUInfo describes one detected graphics card.
type GPUInfo struct {
	Name   string `json:"name"`
	Vendor string `json:"vendor,omitempty"`
	Nvidia bool   `json:"nvidia"`
}

// SystemInfo is a point-in-time view of the host.
type SystemInfo struct {
	CPUModel   string  `json:"cpu_model"`
	CPUCores   int     `json:"cpu_cores"`
	CPUThreads int     `json:"cpu_threads"`

	MemTotalMB     float64 `json:"mem_total_mb"`
	MemAvailableMB float64 `json:"mem_available_mb"`
	MemPercent     float64 `json:"mem_percent"`

	DiskTotalGB float64 `json:"disk_total_gb"`
	DiskFreeGB  float64 `json:"disk_free_gb"`
	DiskPercent float64 `json:"disk_percent"`

	LoadAvg1 float64 `json:"load_avg_1"`

	GPUs []GPUInfo `json:"gpus,omitempty"`
}

// Collector reads host information. Hardware facts are cached after the
// first read, usage numbers are fresh on every call.
type Collector struct {
	mu sync.Mutex

	infoCollected bool
	cpuModel      string
	cpuCores      int
	cpuThreads    int
	gpus          []GPUInfo
}

// NewCollector creates a system info collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect gathers current host information. Every probe is best-effort, a
// failing one leaves its fields zero.
func (c *Collector) Collect() SystemInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := SystemInfo{}
	c.collectHardware(&info)

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemTotalMB = float64(vm.Total) / 1024 / 1024
		info.MemAvailableMB = float64(vm.Available) / 1024 / 1024
		info.MemPercent = vm.UsedPercent
	}

	if usage, err := disk.Usage(rootDiskPath()); err == nil {
		info.DiskTotalGB = float64(usage.Total) / 1024 / 1024 / 1024
		info.DiskFreeGB = float64(usage.Free) / 1024 / 1024 / 1024
		info.DiskPercent = usage.UsedPercent
	}

	if avg, err := load.Avg(); err == nil {
		info.LoadAvg1 = avg.Load1
	}

	return info
}

// HasNvidiaGPU reports whether any detected card is from NVIDIA, which is
// what ONNX Runtime's CUDA provider needs.
func (c *Collector) HasNvidiaGPU() bool {
	for _, gpu := range c.Collect().GPUs {
		if gpu.Nvidia {
			return true
		}
	}
	return false
}

func (c *Collector) collectHardware(info *SystemInfo) {
	if !c.infoCollected {
		if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
			c.cpuModel = strings.TrimSpace(infos[0].ModelName)
		}
		if cores, err := cpu.Counts(false); err == nil && cores > 0 {
			c.cpuCores = cores
		}
		if threads, err := cpu.Counts(true); err == nil && threads > 0 {
			c.cpuThreads = threads
		}
		c.gpus = detectGPUs()
		c.infoCollected = true
	}

	info.CPUModel = c.cpuModel
	info.CPUCores = c.cpuCores
	info.CPUThreads = c.cpuThreads
	info.GPUs = append([]GPUInfo(nil), c.gpus...)
}

func detectGPUs() []GPUInfo {
	gpu, err := ghw.GPU()
	if err != nil || gpu == nil {
		return nil
	}

	gpus := make([]GPUInfo, 0, len(gpu.GraphicsCards))
	for _, card := range gpu.GraphicsCards {
		entry := GPUInfo{}
		if card.DeviceInfo != nil {
			if card.DeviceInfo.Product != nil {
				entry.Name = strings.TrimSpace(card.DeviceInfo.Product.Name)
			}
			if card.DeviceInfo.Vendor != nil {
				entry.Vendor = strings.TrimSpace(card.DeviceInfo.Vendor.Name)
				entry.Nvidia = strings.Contains(strings.ToLower(entry.Vendor), "nvidia")
			}
		}
		if entry.Name == "" {
			entry.Name = "unknown GPU"
		}
		gpus = append(gpus, entry)
	}
	return gpus
}

func rootDiskPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}
