/*Package metrics wraps datadog-go to facilitate metric recording
Naming convention:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
*/
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/anon-exchange/goapi/base/log"
)

const (
	// ddRate is the rate to pass metrics to the datadog agent. 1 means always
	ddRate = 1
	// buffer this many counters before sending to the statsd agent
	bufferMetrics = 10
)

// Ender provides the interface returned by BumpTime
type Ender interface {
	End()
}

// Service provides the interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpTime(key string, tags ...string) Ender
}

var (
	initOnce sync.Once
	client   statsCli
)

type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

func initClient() {
	host := viper.GetString("datadog_host")
	if host == "" {
		log.Log().Info("datadog_host unset, metrics go to debug log")
		client = &logCli{}
		return
	}
	addr := fmt.Sprintf("%s:%d", host, 8125)
	cli, err := statsd.NewBuffered(addr, bufferMetrics)
	if err != nil {
		log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Warn("can't talk to datadog agent, metrics go to debug log")
		client = &logCli{}
		return
	}
	client = cli
}

// New creates a metric client with the package name as key prefix
func New(pkgName string) Service {
	tags := []string{
		"env:" + viper.GetString("env_name"),
		"app:" + viper.GetString("app_name"),
	}
	return &metricsImpl{pkgName: pkgName, tags: tags}
}

type metricsImpl struct {
	pkgName string
	tags    []string
}

func (m *metricsImpl) BumpAvg(key string, val float64, tags ...string) {
	initOnce.Do(initClient)
	client.Gauge(m.pkgName+"."+key, val, append(m.tags, tags...), ddRate)
}

func (m *metricsImpl) BumpSum(key string, val float64, tags ...string) {
	initOnce.Do(initClient)
	client.Count(m.pkgName+"."+key, int64(val), append(m.tags, tags...), ddRate)
}

func (m *metricsImpl) BumpTime(key string, tags ...string) Ender {
	initOnce.Do(initClient)
	return &timeTracker{
		key:   m.pkgName + "." + key,
		tags:  append(m.tags, tags...),
		start: time.Now(),
	}
}

type timeTracker struct {
	key   string
	tags  []string
	start time.Time
}

func (t *timeTracker) End() {
	elapsed := float64(time.Since(t.start) / time.Millisecond)
	client.TimeInMilliseconds(t.key, elapsed, t.tags, ddRate)
}

// logCli routes metrics to the debug log when no agent is reachable
type logCli struct{}

func (lc *logCli) Gauge(name string, value float64, tags []string, rate float64) error {
	log.Log().WithFields(log.Fields{"key": name, "val": value, "tags": tags}).Debug("metric gauge")
	return nil
}

func (lc *logCli) Count(name string, value int64, tags []string, rate float64) error {
	log.Log().WithFields(log.Fields{"key": name, "val": value, "tags": tags}).Debug("metric count")
	return nil
}

func (lc *logCli) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	log.Log().WithFields(log.Fields{"key": name, "time_ms": value, "tags": tags}).Debug("metric time")
	return nil
}
