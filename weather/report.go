package weather

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type Coordinates struct {
	Lon float32 `json:"lon"`
	Lat float32 `json:"lat"`
}

type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Wind struct {
	Speed float32  `json:"speed"`
	Deg   int      `json:"deg"`
	Gust  *float32 `json:"gust,omitempty"`
}

type Measurements struct {
	Temp      float32 `json:"temp"`
	FeelsLike float32 `json:"feels_like"`
	TempMin   float32 `json:"temp_min"`
	TempMax   float32 `json:"temp_max"`
	Pressure  float32 `json:"pressure"`
	Humidity  float32 `json:"humidity"`
}

// Report is the current weather for one city, as returned by
// /data/2.5/weather.
type Report struct {
	Coord      Coordinates  `json:"coord"`
	Conditions []Condition  `json:"weather"`
	Base       string       `json:"base"`
	Name       string       `json:"name"`
	Wind       Wind         `json:"wind"`
	Main       Measurements `json:"main"`
}

// DecodeError is returned when a response body does not match the Report
// shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode weather report: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// The wire types mirror Report with pointers so that absent fields can be
// told apart from zero values.
type wireCoord struct {
	Lon *float32 `json:"lon" validate:"required"`
	Lat *float32 `json:"lat" validate:"required"`
}

type wireCondition struct {
	ID          *int    `json:"id" validate:"required"`
	Main        *string `json:"main" validate:"required"`
	Description *string `json:"description" validate:"required"`
	Icon        *string `json:"icon" validate:"required"`
}

type wireWind struct {
	Speed *float32 `json:"speed" validate:"required"`
	Deg   *int     `json:"deg" validate:"required"`
	Gust  *float32 `json:"gust"`
}

type wireMain struct {
	Temp      *float32 `json:"temp" validate:"required"`
	FeelsLike *float32 `json:"feels_like" validate:"required"`
	TempMin   *float32 `json:"temp_min" validate:"required"`
	TempMax   *float32 `json:"temp_max" validate:"required"`
	Pressure  *float32 `json:"pressure" validate:"required"`
	Humidity  *float32 `json:"humidity" validate:"required"`
}

type wireReport struct {
	Coord   *wireCoord      `json:"coord" validate:"required"`
	Weather []wireCondition `json:"weather" validate:"required,dive"`
	Base    *string         `json:"base" validate:"required"`
	Name    *string         `json:"name" validate:"required"`
	Wind    *wireWind       `json:"wind" validate:"required"`
	Main    *wireMain       `json:"main" validate:"required"`
}

var validate = validator.New()

// Decode parses an OpenWeatherMap current weather document. Every field the
// report relies on must be present; only wind.gust may be omitted.
func Decode(body []byte) (*Report, error) {
	var w wireReport
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := validate.Struct(&w); err != nil {
		return nil, &DecodeError{Err: errors.Wrap(err, "missing required field")}
	}

	r := &Report{
		Coord: Coordinates{
			Lon: *w.Coord.Lon,
			Lat: *w.Coord.Lat,
		},
		Conditions: make([]Condition, 0, len(w.Weather)),
		Base:       *w.Base,
		Name:       *w.Name,
		Wind: Wind{
			Speed: *w.Wind.Speed,
			Deg:   *w.Wind.Deg,
			Gust:  w.Wind.Gust,
		},
		Main: Measurements{
			Temp:      *w.Main.Temp,
			FeelsLike: *w.Main.FeelsLike,
			TempMin:   *w.Main.TempMin,
			TempMax:   *w.Main.TempMax,
			Pressure:  *w.Main.Pressure,
			Humidity:  *w.Main.Humidity,
		},
	}
	for _, c := range w.Weather {
		r.Conditions = append(r.Conditions, Condition{
			ID:          *c.ID,
			Main:        *c.Main,
			Description: *c.Description,
			Icon:        *c.Icon,
		})
	}
	return r, nil
}
