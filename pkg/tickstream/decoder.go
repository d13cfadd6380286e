package tickstream

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"

	"github.com/c9s/xfactor/pkg/accumulator"
	"github.com/c9s/xfactor/pkg/holder"
)

var log = logrus.WithField("component", "tickstream")

var (
	ErrInvalidTick  = errors.New("invalid tick")
	ErrInvalidField = errors.New("invalid field value")
)

const maxLineSize = 4 * 1024 * 1024

// Decoder reads newline delimited JSON ticks:
//
//	{"AAPL": {"close": 1.0, "up": true}, "IBM": {"close": 2.0}}
type Decoder struct {
	scanner *bufio.Scanner
	parser  fastjson.Parser
	line    int
}

func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{scanner: scanner}
}

// Decode returns the next tick, or io.EOF once the input is exhausted.
func (d *Decoder) Decode() (holder.Tick, error) {
	for d.scanner.Scan() {
		d.line++

		payload := bytes.TrimSpace(d.scanner.Bytes())
		if len(payload) == 0 {
			continue
		}

		tick, err := d.parse(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", d.line)
		}

		ticksDecodedMetrics.Inc()
		return tick, nil
	}

	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// DecodeAll reads every remaining tick.
func (d *Decoder) DecodeAll() ([]holder.Tick, error) {
	var ticks []holder.Tick
	for {
		tick, err := d.Decode()
		if err == io.EOF {
			return ticks, nil
		} else if err != nil {
			return ticks, err
		}
		ticks = append(ticks, tick)
	}
}

func (d *Decoder) parse(payload []byte) (holder.Tick, error) {
	val, err := d.parser.ParseBytes(payload)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidTick, err.Error())
	}

	obj, err := val.Object()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidTick, "tick should be an object of entities")
	}

	tick := holder.Tick{}
	obj.Visit(func(key []byte, v *fastjson.Value) {
		if err != nil {
			return
		}

		entity := strings.ToLower(string(key))
		var record accumulator.Record
		record, err = parseRecord(v)
		if err != nil {
			err = errors.Wrapf(err, "entity %s", entity)
			return
		}
		tick[entity] = record
	})

	return tick, err
}

func parseRecord(v *fastjson.Value) (accumulator.Record, error) {
	obj, err := v.Object()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidTick, "entity should be an object of fields")
	}

	record := accumulator.Record{}
	obj.Visit(func(key []byte, fv *fastjson.Value) {
		if err != nil {
			return
		}

		field := strings.ToLower(string(key))
		switch fv.Type() {
		case fastjson.TypeNumber:
			record[field] = fv.GetFloat64()
		case fastjson.TypeTrue:
			record[field] = 1
		case fastjson.TypeFalse:
			record[field] = 0
		case fastjson.TypeNull:
			// absent field, the holder does not update on it
		case fastjson.TypeString:
			f, perr := strconv.ParseFloat(string(fv.GetStringBytes()), 64)
			if perr != nil {
				err = errors.Wrapf(ErrInvalidField, "%s: %q", field, fv.GetStringBytes())
				return
			}
			record[field] = f
		default:
			err = errors.Wrapf(ErrInvalidField, "%s: unsupported type %s", field, fv.Type())
		}
	})

	if err != nil {
		return nil, err
	}

	if len(record) == 0 {
		log.Debugf("entity record has no fields")
	}
	return record, nil
}
