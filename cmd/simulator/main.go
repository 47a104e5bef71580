package main

import (
	"encoding/json"
	"flag"
	"math/rand"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/config"
	"github.com/mounirchebbi/beach-safety-app/internal/domain"
	"github.com/mounirchebbi/beach-safety-app/internal/weather"
)

func main() {
	centers := flag.String("centers", "", "comma-separated center ids to simulate")
	count := flag.Int("count", 100, "readings to publish per center")
	interval := flag.Duration("interval", 2*time.Second, "delay between readings")
	flag.Parse()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *centers == "" {
		log.Fatal().Msg("-centers is required")
	}
	ids := strings.Split(*centers, ",")

	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	for i := 0; i < *count; i++ {
		now := time.Now().UTC()
		marine := weather.SimulateMarine(now)
		for _, id := range ids {
			r := domain.WeatherReading{
				CenterID:      id,
				Temperature:   22 + rand.Float64()*12,
				Humidity:      50 + rand.Float64()*40,
				Pressure:      1000 + rand.Float64()*25,
				WindSpeed:     rand.Float64() * 30,
				WindDirection: rand.Float64() * 360,
				Condition:     "Clear",
				Visibility:    5 + rand.Float64()*10,
				Precipitation: rand.Float64() * 12,
				WaveHeight:    marine.WaveHeight,
				CurrentSpeed:  marine.CurrentSpeed,
				RecordedAt:    now,
			}
			payload, _ := json.Marshal(r)
			token := client.Publish("safety/readings/"+id, 0, false, payload)
			token.Wait()
		}
		time.Sleep(*interval)
	}
	log.Info().Msg("simulation done")
}
