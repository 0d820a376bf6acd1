package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"openf1dashboard/pkg/config"
	"openf1dashboard/pkg/openf1"
	"openf1dashboard/pkg/standings"
)

func main() {
	year := flag.Int("year", time.Now().Year(), "championship year to aggregate")
	flag.Parse()

	_ = config.Load()
	api := openf1.NewClient(openf1.WithBaseURL(config.GetEnv(config.KeyBaseURL, openf1.DefaultBaseURL)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	agg := standings.NewAggregator(api)
	snapshot, err := agg.Season(ctx, *year)
	if err != nil {
		log.Fatalf("Error aggregating season %d: %s", *year, err.Error())
	}

	fmt.Println(standings.RenderDrivers(snapshot))
	fmt.Println(standings.RenderConstructors(snapshot))
}
