package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type sampleMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	SpeedKmh  float64 `json:"speed"`
	Timestamp int64   `json:"timestamp"`
}

// Depot used as the drift center so generated tracks cross the seeded
// pickup zone during local testing.
const (
	depotLat = 43.8563
	depotLon = 18.4131
)

func randomDeviceID() string {
	return fmt.Sprintf("SIM-%05d", rand.Intn(100000))
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("fleet-sample-publisher")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	devicePool := make([]string, 5)
	for i := range devicePool {
		devicePool[i] = randomDeviceID()
	}

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)
	log.Printf("device pool: %v", devicePool)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		deviceID := devicePool[rand.Intn(len(devicePool))]

		// 30% chance to report near the depot, the rest drifts within ~10km
		var lat, lon float64
		if rand.Float64() < 0.3 {
			lat = depotLat + (rand.Float64()-0.5)*0.005
			lon = depotLon + (rand.Float64()-0.5)*0.005
		} else {
			lat = depotLat + (rand.Float64()-0.5)*0.2
			lon = depotLon + (rand.Float64()-0.5)*0.2
		}

		msg := sampleMessage{
			DeviceID:  deviceID,
			Latitude:  lat,
			Longitude: lon,
			SpeedKmh:  rand.Float64() * 100,
			Timestamp: time.Now().Unix(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/fleet/device/%s/location", deviceID)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}
