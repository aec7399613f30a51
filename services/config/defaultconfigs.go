package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

// Two sensors per bus (SDO low / high), one limiter slot each.
const cfgEnvNode = `{
  "envsense": {
    "buses": {
      "a": {"type": "embd", "id": 1}
    },
    "devices": [
      {"name": "A1", "bus": "a", "addr": 118, "slot": 0},
      {"name": "A2", "bus": "a", "addr": 119, "slot": 1}
    ],
    "limiter_ms": 25,
    "setup": {
      "power": 2,
      "iir": 4,
      "spi": false,
      "os": {"pressure": 5, "temperature": 2},
      "standby": 0
    },
    "samples": 15,
    "interval_s": 60
  },
  "heartbeat": {
    "interval": 10
  }
}`

const cfgEnvNodeDual = `{
  "envsense": {
    "buses": {
      "a": {"type": "embd", "id": 1},
      "b": {"type": "periph", "name": "2"}
    },
    "devices": [
      {"name": "A1", "bus": "a", "addr": 118, "slot": 0},
      {"name": "A2", "bus": "a", "addr": 119, "slot": 1},
      {"name": "B1", "bus": "b", "addr": 118, "slot": 2},
      {"name": "B2", "bus": "b", "addr": 119, "slot": 3}
    ],
    "limiter_ms": 15,
    "setup": {"power": 2, "iir": 4, "os": {"pressure": 5, "temperature": 2}},
    "period_ms": 1000,
    "interval_s": 60
  },
  "heartbeat": {
    "interval": 10
  }
}`

const cfgPico = `{
  "envsense": {
    "buses": {
      "a": {"type": "rp2", "id": 0},
      "b": {"type": "rp2", "id": 1}
    },
    "devices": [
      {"name": "A1", "bus": "a", "addr": 118, "slot": 0},
      {"name": "A2", "bus": "a", "addr": 119, "slot": 1},
      {"name": "B1", "bus": "b", "addr": 118, "slot": 2},
      {"name": "B2", "bus": "b", "addr": 119, "slot": 3}
    ],
    "limiter_ms": 25,
    "setup": {"power": 2, "iir": 4, "os": {"pressure": 5, "temperature": 2}, "standby": 0},
    "samples": 15,
    "interval_s": 60
  },
  "heartbeat": {
    "interval": 30
  }
}`

var embeddedConfigs = map[string][]byte{
	"envnode":      []byte(cfgEnvNode),
	"envnode-dual": []byte(cfgEnvNodeDual),
	"pico":         []byte(cfgPico),
}
