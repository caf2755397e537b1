package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/dualorbit/dualorbit"
	"github.com/dualorbit/dualorbit/metrics"
	kitlog "github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// This only reads the scenario, samples the separation of both bodies and writes the export files.

const defaultScenario = "~~unset~~"

var (
	scenario    string
	outDir      string
	metricsAddr string
	verbose     bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file (defaults to $"+dualorbit.DefaultScenarioEnv+"/scenario.toml)")
	flag.StringVar(&outDir, "out", "", "output directory, overrides export.dir")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address and keep running after the export")
	flag.BoolVar(&verbose, "verbose", false, "log every sampling run")
}

func main() {
	flag.Parse()
	var (
		conf *dualorbit.Scenario
		err  error
	)
	if scenario == defaultScenario {
		conf, err = dualorbit.LoadDefaultScenario()
	} else {
		conf, err = dualorbit.LoadScenario(scenario)
	}
	if err != nil {
		log.Fatalf("could not load scenario: %s", err)
	}
	if outDir != "" {
		conf.Export.Dir = outDir
	}

	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "scenario", conf.Name)
	samplerLog := kitlog.NewNopLogger()
	if verbose {
		samplerLog = klog
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		log.Fatalf("could not register metrics: %s", err)
	}

	if _, _, err := run(conf, klog, samplerLog, collector); err != nil {
		os.Exit(1)
	}

	if metricsAddr != "" {
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		klog.Log("level", "info", "subsys", "metrics", "addr", metricsAddr)
		log.Fatal(http.ListenAndServe(metricsAddr, nil))
	}
}

// run samples the scenario and writes its export files. Failures are logged before being returned.
func run(conf *dualorbit.Scenario, klog, samplerLog kitlog.Logger, collector *metrics.Collector) (dualorbit.TimeSeries, []string, error) {
	a, b, err := conf.Models()
	if err != nil {
		klog.Log("level", "critical", "subsys", "config", "err", err)
		return dualorbit.TimeSeries{}, nil, err
	}
	klog.Log("level", "info", "subsys", "config", conf.Bodies[0].Name, a, conf.Bodies[1].Name, b)

	sampler := dualorbit.NewSampler(conf.Sampling.Workers, samplerLog, collector)
	ts, err := sampler.Sample(context.Background(), a, b, conf.Sampling.Start, conf.Sampling.End, conf.Sampling.Points)
	if err != nil {
		klog.Log("level", "critical", "subsys", "sampler", "err", err)
		return ts, nil, err
	}
	klog.Log("level", "notice", "subsys", "sampler", "points", ts.Len(), "max", ts.Max, "displayMax", ts.DisplayMax())

	if conf.Export.IsUseless() {
		klog.Log("level", "warning", "subsys", "export", "message", "no export directory, nothing written")
		return ts, nil, nil
	}
	names := [2]string{conf.Bodies[0].Name, conf.Bodies[1].Name}
	files, err := dualorbit.ExportScenario(conf.Export, names, a, b, ts)
	if err != nil {
		klog.Log("level", "critical", "subsys", "export", "err", err)
		return ts, files, err
	}
	for _, f := range files {
		klog.Log("level", "info", "subsys", "export", "file", f)
	}
	return ts, files, nil
}
