// Package mqtt provides the MQTT client the ledbetter host uses to publish
// frames and status, and to receive parameter commands.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS and retain control
//   - Subscriptions that are restored after a reconnect
//   - Last Will and Testament so consumers notice a crashed host
//
// # Topics
//
//	ledbetter/status              retained online/offline status
//	ledbetter/frame               rendered frames (see output/mqttframe)
//	ledbetter/params              retained current parameter values
//	ledbetter/command/params      parameter writes from remote controllers
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.CommandParams(), 1,
//	    func(topic string, payload []byte) error {
//	        return apply(payload)
//	    })
//
// TLS should be enabled (cfg.Broker.TLS) whenever the broker is reachable
// beyond localhost.
package mqtt
