// Package main implements a simulated VDA5050 robot.
//
// The simulator publishes connection, state, and visualization messages
// for one robot at a fixed frequency, with drifting position and battery
// decay, and per-kind monotonically increasing headerId counters. It is
// a stand-in producer for exercising the gateway against a live broker.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/fleet-control/vdagw/internal/vda"
)

const schemaVersion = "2.0.0"

// robot holds the simulated robot state and its per-kind counters.
type robot struct {
	client    mqtt.Client
	namespace string
	identity  vda.Identity

	headerIDs map[vda.Kind]uint64

	x, y, theta   float64
	battery       float64
	driving       bool
	operatingMode string
}

func main() {
	broker := flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	namespace := flag.String("namespace", vda.DefaultNamespace, "topic namespace")
	manufacturer := flag.String("manufacturer", "roboticsInc", "robot manufacturer")
	serial := flag.String("serial", "AGV_001", "robot serial number")
	frequency := flag.Duration("frequency", 3*time.Second, "publish interval")
	flag.Parse()

	r := &robot{
		namespace:     *namespace,
		identity:      vda.Identity{Manufacturer: *manufacturer, Serial: *serial},
		headerIDs:     make(map[vda.Kind]uint64),
		battery:       100,
		operatingMode: "AUTOMATIC",
	}

	opts := mqtt.NewClientOptions().
		AddBroker(*broker).
		SetClientID("robotsim-" + *serial).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Printf("Connected to MQTT broker at %s", *broker)
			r.publishConnection(vda.ConnectionOnline)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("Disconnected from MQTT broker: %v", err)
		})

	r.client = mqtt.NewClient(opts)
	if token := r.client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect to MQTT broker at %s: %v", *broker, token.Error())
	}

	log.Printf("Streaming VDA5050 telemetry for %s every %s", r.identity, *frequency)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*frequency)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.move()
			r.publishState()
			r.publishVisualization()
		case sig := <-shutdown:
			log.Printf("Received signal %v, going offline", sig)
			r.publishConnection(vda.ConnectionOffline)
			r.client.Disconnect(250)
			return
		}
	}
}

// move advances the simulated pose and drains the battery.
func (r *robot) move() {
	r.x = mod(r.x+0.5, 20)
	r.y = mod(r.y+0.3, 15)
	r.theta = mod(r.theta+5, 360)
	if r.battery > 0 {
		r.battery -= 0.1
		if r.battery < 0 {
			r.battery = 0
		}
	}
	r.driving = rand.Intn(2) == 0
}

func mod(v, m float64) float64 {
	for v >= m {
		v -= m
	}
	return v
}

func (r *robot) header(kind vda.Kind) vda.Header {
	r.headerIDs[kind]++
	return vda.Header{
		HeaderID:     r.headerIDs[kind],
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Version:      schemaVersion,
		Manufacturer: r.identity.Manufacturer,
		SerialNumber: r.identity.Serial,
	}
}

func (r *robot) publishConnection(state string) {
	msg := vda.ConnectionMessage{
		Header:          r.header(vda.KindConnection),
		ConnectionState: state,
	}
	r.publish(vda.KindConnection, msg)
}

func (r *robot) publishState() {
	msg := vda.StateMessage{
		Header:        r.header(vda.KindState),
		Driving:       r.driving,
		OperatingMode: r.operatingMode,
		BatteryState:  vda.BatteryState{BatteryCharge: r.battery},
		Position:      vda.Position{X: r.x, Y: r.y, Theta: r.theta},
		Errors:        []vda.ErrorEntry{},
		Information:   []vda.InfoEntry{},
	}
	r.publish(vda.KindState, msg)
}

func (r *robot) publishVisualization() {
	msg := vda.VisualizationMessage{
		Header: r.header(vda.KindVisualization),
		VisualizationData: vda.VisualizationData{
			Path: []vda.Point{
				{X: r.x, Y: r.y},
				{X: r.x + 1, Y: r.y + 1},
			},
		},
	}
	r.publish(vda.KindVisualization, msg)
}

func (r *robot) publish(kind vda.Kind, msg interface{}) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal %s message: %v", kind, err)
		return
	}

	topic := vda.Topic(r.namespace, r.identity, kind)
	if token := r.client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("Failed to publish %s message: %v", kind, token.Error())
	}
}
