package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var (
	LFJSON LogFormat = "json"
	LFText LogFormat = "text"
)

func NewConfig(fileName string) (Config, error) {
	c := Config{}

	b, err := os.ReadFile(fileName)
	if err != nil {
		return c, fmt.Errorf("unable to open %q, reason: %w", fileName, err)
	}

	_, err = toml.Decode(string(b), &c)
	if err != nil {
		return c, fmt.Errorf("unable to unmarshal %q, reason: %w", fileName, err)
	}

	return c, nil
}

// Config holds central config parameters
type Config struct {
	Client struct {
		InputLengthMax int64 `toml:"inputLengthMax"`
	} `toml:"client"`
	Server struct {
		ListenOn        string `toml:"listenOn"`
		ConnectionLimit uint   `toml:"connectionLimit"`
		PathStrip       string `toml:"pathStrip"`
		CORS            struct {
			AllowedOrigins []string `toml:"allowedOrigins"`
			AllowedHeaders []string `toml:"allowedHeaders"`
		} `toml:"CORS"`
		Headers Headers `toml:"headers"`
		Log     struct {
			Level  string    `toml:"level"`
			Format LogFormat `toml:"format"`
		} `toml:"log"`
		Hash struct {
			Key string `toml:"key"`
		} `toml:"hash"`
		Validator struct {
			Resolver     string   `toml:"resolver"`
			ProbeTimeout Duration `toml:"probeTimeout"`
			CheckMX      bool     `toml:"checkMX"`
			CheckDomain  bool     `toml:"checkDomain"`
		} `toml:"validator"`
		Cache struct {
			TTL Duration `toml:"ttl"`
		} `toml:"cache"`
		GraphQL struct {
			PrettyOutput bool `toml:"prettyOutput"`
			GraphiQL     bool `toml:"graphiQL"`
			Playground   bool `toml:"playground"`
		} `toml:"graphql"`
		RateLimiter struct {
			Rate     uint     `toml:"rate"`
			Capacity uint     `toml:"capacity"`
			MaxDelay Duration `toml:"maxDelay"`
		} `toml:"rateLimiter"`
		Profiler struct {
			Enable bool   `toml:"enable"`
			Prefix string `toml:"prefix"`
		} `toml:"profiler"`
		Backend struct {
			Driver string `toml:"driver"`
			URL    string `toml:"url"`
		} `toml:"backend"`
		PubSub struct {
			Enable          bool   `toml:"enable"`
			Project         string `toml:"project"`
			Topic           string `toml:"topic"`
			CredentialsFile string `toml:"credentialsFile"`
		} `toml:"pubsub"`
		Finder struct {
			LengthTolerance float64 `toml:"lengthTolerance"`
		} `toml:"finder"`
	} `toml:"server"`
}

type Headers map[string]string

func (h Headers) String() string {
	var v string
	for header, value := range h {
		v += `"` + header + `:` + value + `",`
	}

	if len(v) > 0 {
		v = v[0 : len(v)-1]
	}

	return v
}

func (h *Headers) Set(v string) error {
	s := strings.SplitN(v, `:`, 2)
	if len(s) != 2 {
		return fmt.Errorf("invalid Header argument %q, expecting <header name>:<header value>", v)
	}

	if *h == nil {
		*h = make(map[string]string, 1)
	}

	(*h)[s[0]] = s[1]

	return nil
}

type Duration struct {
	duration time.Duration
}

func (d Duration) String() string {
	return d.duration.String()
}

func (d *Duration) Set(v string) error {
	var err error
	d.duration, err = time.ParseDuration(v)
	return err
}

func (d Duration) AsDuration() time.Duration {
	return d.duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.duration, err = time.ParseDuration(string(text))
	return err
}

type LogFormat string

func (lf LogFormat) String() string {
	return string(lf)
}

func (lf *LogFormat) Set(v string) error {
	*lf = LogFormat(v)
	return nil
}

func (lf *LogFormat) UnmarshalText(value []byte) error {
	validTypes := []string{string(LFJSON), string(LFText)}
	v := string(value)
	for _, t := range validTypes {
		if t == v {
			*lf = LogFormat(v)
			return nil
		}
	}

	expected := strings.Join(validTypes, ", ")
	return fmt.Errorf("unsupported value %q for log format. Expected one of: %q", value, expected)
}
