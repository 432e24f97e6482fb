// module_datetime.go
//
// Date and time words. The interpreter timezone governs TODAY, NOW, AT and
// the timestamp conversions; dates stay plain (no zone) until a word
// combines them with a time.
package forthic

import (
	"fmt"
	"strings"
	"time"
)

func newDatetimeModule() *Module {
	m := NewModule("datetime")

	m.AddExportedDirect("TODAY",
		"( -- date ) Today's date in the interpreter timezone.",
		func(ip *Interpreter) error {
			ip.Push(Date(DateOf(time.Now().In(ip.Timezone()))))
			return nil
		})

	m.AddExportedDirect("NOW",
		"( -- datetime ) The current moment as a zoned datetime in the interpreter timezone.",
		func(ip *Interpreter) error {
			z, err := NewZonedTime(time.Now(), zoneName(ip.Timezone()))
			if err != nil {
				return err
			}
			ip.Push(Zoned(z))
			return nil
		})

	m.AddExportedNative(">DATE", "( value -- date )",
		"Convert a datetime, instant or YYYY-MM-DD string to a plain date.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			switch args[0].Tag {
			case VTDate:
				return &args[0], nil
			case VTInstant:
				v := Date(DateOf(args[0].Data.(time.Time).In(ip.Timezone())))
				return &v, nil
			case VTZoned:
				v := Date(DateOf(args[0].Data.(ZonedTime).Time))
				return &v, nil
			case VTStr:
				if d, ok := parseDateLiteral(strings.TrimSpace(args[0].Data.(string)), ip.Timezone()); ok {
					return &d, nil
				}
				return nil, &WordTypeError{Word: ">DATE", Want: "YYYY-MM-DD string", Got: VTStr}
			case VTNull:
				v := Null
				return &v, nil
			default:
				return nil, &WordTypeError{Word: ">DATE", Want: "date, datetime, instant or string", Got: args[0].Tag}
			}
		})

	m.AddExportedNative(">DATETIME", "( value -- datetime )",
		"Convert a date, instant or ISO string to a zoned datetime in the interpreter timezone.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			zone := zoneName(ip.Timezone())
			switch args[0].Tag {
			case VTZoned:
				return &args[0], nil
			case VTInstant:
				z, err := NewZonedTime(args[0].Data.(time.Time), zone)
				if err != nil {
					return nil, err
				}
				v := Zoned(z)
				return &v, nil
			case VTDate:
				d := args[0].Data.(PlainDate)
				z, err := NewZonedTime(d.Midnight(ip.Timezone()), zone)
				if err != nil {
					return nil, err
				}
				v := Zoned(z)
				return &v, nil
			case VTStr:
				text := strings.TrimSpace(args[0].Data.(string))
				if v, ok := parseZonedLiteral(text, ip.Timezone()); ok {
					return &v, nil
				}
				if d, ok := parseDateLiteral(text, ip.Timezone()); ok {
					pd := d.Data.(PlainDate)
					z, err := NewZonedTime(pd.Midnight(ip.Timezone()), zone)
					if err != nil {
						return nil, err
					}
					v := Zoned(z)
					return &v, nil
				}
				return nil, &WordTypeError{Word: ">DATETIME", Want: "ISO datetime string", Got: VTStr}
			case VTNull:
				v := Null
				return &v, nil
			default:
				return nil, &WordTypeError{Word: ">DATETIME", Want: "date, datetime, instant or string", Got: args[0].Tag}
			}
		})

	m.AddExportedNative("AT", "( date time -- datetime )",
		"Combine a date and a clock time into a zoned datetime in the interpreter timezone.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			if args[0].Tag != VTDate {
				return nil, &WordTypeError{Word: "AT", Want: "date", Got: args[0].Tag}
			}
			if args[1].Tag != VTTime {
				return nil, &WordTypeError{Word: "AT", Want: "time", Got: args[1].Tag}
			}
			d := args[0].Data.(PlainDate)
			t := args[1].Data.(TimeOfDay)
			loc := ip.Timezone()
			combined := time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
			z, err := NewZonedTime(combined, zoneName(loc))
			if err != nil {
				return nil, err
			}
			v := Zoned(z)
			return &v, nil
		})

	m.AddExportedNative("DATE>STR", "( date -- string )",
		"Format a date as YYYY-MM-DD.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			d, err := asDate("DATE>STR", args[0])
			if err != nil {
				return nil, err
			}
			v := Str(d.String())
			return &v, nil
		})

	m.AddExportedNative("DATE>INT", "( date -- int )",
		"Encode a date as the integer YYYYMMDD.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			d, err := asDate("DATE>INT", args[0])
			if err != nil {
				return nil, err
			}
			v := Int(int64(d.Year)*10000 + int64(d.Month)*100 + int64(d.Day))
			return &v, nil
		})

	m.AddExportedNative(">TIMESTAMP", "( value -- int )",
		"Unix seconds of a datetime, instant or date (midnight in the interpreter timezone).",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			switch args[0].Tag {
			case VTInstant:
				v := Int(args[0].Data.(time.Time).Unix())
				return &v, nil
			case VTZoned:
				v := Int(args[0].Data.(ZonedTime).Time.Unix())
				return &v, nil
			case VTDate:
				v := Int(args[0].Data.(PlainDate).Midnight(ip.Timezone()).Unix())
				return &v, nil
			default:
				return nil, &WordTypeError{Word: ">TIMESTAMP", Want: "datetime, instant or date", Got: args[0].Tag}
			}
		})

	m.AddExportedNative("TIMESTAMP>DATETIME", "( int -- datetime )",
		"Zoned datetime for a Unix-seconds timestamp, in the interpreter timezone.",
		func(ip *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			secs, err := asInt("TIMESTAMP>DATETIME", args[0])
			if err != nil {
				return nil, err
			}
			z, zerr := NewZonedTime(time.Unix(secs, 0), zoneName(ip.Timezone()))
			if zerr != nil {
				return nil, zerr
			}
			v := Zoned(z)
			return &v, nil
		})

	m.AddExportedNative("ADD-DAYS", "( date n -- date )",
		"Date n days later (earlier for negative n).",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			d, err := asDate("ADD-DAYS", args[0])
			if err != nil {
				return nil, err
			}
			n, err := asInt("ADD-DAYS", args[1])
			if err != nil {
				return nil, err
			}
			v := Date(DateOf(d.Midnight(time.UTC).AddDate(0, 0, int(n))))
			return &v, nil
		})

	m.AddExportedNative("SUBTRACT-DATES", "( a b -- days )",
		"Whole days from b to a.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			a, err := asDate("SUBTRACT-DATES", args[0])
			if err != nil {
				return nil, err
			}
			b, err := asDate("SUBTRACT-DATES", args[1])
			if err != nil {
				return nil, err
			}
			days := int64(a.Midnight(time.UTC).Sub(b.Midnight(time.UTC)).Hours() / 24)
			v := Int(days)
			return &v, nil
		})

	m.AddExportedNative("AM", "( time -- time )",
		"Force a clock time into the AM range.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			t, err := asTime("AM", args[0])
			if err != nil {
				return nil, err
			}
			v := Clock(TimeOfDay{Hour: t.Hour % 12, Minute: t.Minute})
			return &v, nil
		})

	m.AddExportedNative("PM", "( time -- time )",
		"Force a clock time into the PM range.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			t, err := asTime("PM", args[0])
			if err != nil {
				return nil, err
			}
			v := Clock(TimeOfDay{Hour: t.Hour%12 + 12, Minute: t.Minute})
			return &v, nil
		})

	m.AddExportedNative(">TIME", "( value -- time )",
		"Convert an H:MM string or datetime to a clock time.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			switch args[0].Tag {
			case VTTime:
				return &args[0], nil
			case VTStr:
				if v, ok := parseTimeLiteral(strings.TrimSpace(args[0].Data.(string)), nil); ok {
					return &v, nil
				}
				return nil, &WordTypeError{Word: ">TIME", Want: "H:MM string", Got: VTStr}
			case VTZoned:
				t := args[0].Data.(ZonedTime).Time
				v := Clock(TimeOfDay{Hour: t.Hour(), Minute: t.Minute()})
				return &v, nil
			case VTInstant:
				t := args[0].Data.(time.Time)
				v := Clock(TimeOfDay{Hour: t.Hour(), Minute: t.Minute()})
				return &v, nil
			default:
				return nil, &WordTypeError{Word: ">TIME", Want: "time, string or datetime", Got: args[0].Tag}
			}
		})

	m.AddExportedNative("TIME>STR", "( time -- string )",
		"Format a clock time as HH:MM.",
		func(_ *Interpreter, args []Value, _ *WordOptions) (*Value, error) {
			t, err := asTime("TIME>STR", args[0])
			if err != nil {
				return nil, err
			}
			v := Str(fmt.Sprintf("%02d:%02d", t.Hour, t.Minute))
			return &v, nil
		})

	return m
}

func asDate(word string, v Value) (PlainDate, error) {
	if v.Tag != VTDate {
		return PlainDate{}, &WordTypeError{Word: word, Want: "date", Got: v.Tag}
	}
	return v.Data.(PlainDate), nil
}

func asTime(word string, v Value) (TimeOfDay, error) {
	if v.Tag != VTTime {
		return TimeOfDay{}, &WordTypeError{Word: word, Want: "time", Got: v.Tag}
	}
	return v.Data.(TimeOfDay), nil
}
