package flags

import (
	"net"
	"strconv"

	"code.cloudfoundry.org/dbx/logx"
	"code.cloudfoundry.org/dbx/metrics"
	"code.cloudfoundry.org/dbx/metrics/statsdx"
	"github.com/cactus/go-statsd-client/statsd"
)

type StatsDFlag struct {
	Hostname string `long:"hostname" description:"Hostname used to connect to StatsD server"`
	Port     int    `long:"port" description:"Port used to connect to StatsD server" default:"8125"`
}

// Statter returns a statsd-backed sink when a hostname is configured and a
// no-op sink otherwise.
func (f StatsDFlag) Statter(logger logx.Logger) (metrics.Statter, error) {
	if f.Hostname == "" {
		return metrics.NoopStatter{}, nil
	}

	statsdClient, err := statsd.NewClient(net.JoinHostPort(f.Hostname, strconv.Itoa(f.Port)), "dbx")
	if err != nil {
		logger.Error(failedToConnectToStatsD, err, logx.Data{
			Key:   "statsd_hostname",
			Value: f.Hostname,
		}, logx.Data{
			Key:   "statsd_port",
			Value: f.Port,
		})
		return nil, err
	}

	return statsdx.NewStatter(logger, statsdClient), nil
}
