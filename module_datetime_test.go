package forthic

import (
	"testing"
	"time"
)

func TestDateWords(t *testing.T) {
	cases := []struct {
		src  string
		want Value
	}{
		{`2025-05-04 DATE>STR`, Str("2025-05-04")},
		{`2025-05-04 DATE>INT`, Int(20250504)},
		{`2025-05-04 3 ADD-DAYS DATE>STR`, Str("2025-05-07")},
		{`2025-05-04 -4 ADD-DAYS DATE>STR`, Str("2025-04-30")},
		{`2025-05-10 2025-05-04 SUBTRACT-DATES`, Int(6)},
		{`"2025-05-04" >DATE DATE>STR`, Str("2025-05-04")},
	}
	for _, tc := range cases {
		wantValue(t, tc.src, tc.want)
	}
}

func TestToday(t *testing.T) {
	ip := NewStandardInterpreter()
	if err := ip.Run("TODAY"); err != nil {
		t.Fatalf("run: %v", err)
	}
	v, _ := ip.Peek()
	if v.Tag != VTDate {
		t.Fatalf("TODAY: got %s", TagName(v.Tag))
	}
	want := DateOf(time.Now().UTC())
	if v.Data.(PlainDate) != want {
		// midnight rollover between the two calls is the only legal miss
		t.Logf("TODAY %v vs %v (rollover?)", v.Data, want)
	}
}

func TestNow(t *testing.T) {
	v := runTop(t, "NOW")
	if v.Tag != VTZoned {
		t.Fatalf("NOW: got %s", TagName(v.Tag))
	}
	z := v.Data.(ZonedTime)
	if z.Zone != "UTC" {
		t.Errorf("NOW zone: got %q, want UTC (interpreter default)", z.Zone)
	}
	if d := time.Since(z.Time); d < 0 || d > time.Minute {
		t.Errorf("NOW drifted: %v", d)
	}
}

func TestTimeWords(t *testing.T) {
	cases := []struct {
		src  string
		want Value
	}{
		{`9:30 TIME>STR`, Str("09:30")},
		{`"14:05" >TIME TIME>STR`, Str("14:05")},
		{`11:30 PM TIME>STR`, Str("23:30")},
		{`11:30 AM TIME>STR`, Str("11:30")},
		{`12:15 AM TIME>STR`, Str("00:15")},
		{`12:15 PM TIME>STR`, Str("12:15")},
	}
	for _, tc := range cases {
		wantValue(t, tc.src, tc.want)
	}
}

func TestAtCombines(t *testing.T) {
	v := runTop(t, "2025-05-04 9:30 AT")
	if v.Tag != VTZoned {
		t.Fatalf("AT: got %s", TagName(v.Tag))
	}
	z := v.Data.(ZonedTime)
	if z.Time.Year() != 2025 || z.Time.Hour() != 9 || z.Time.Minute() != 30 {
		t.Errorf("AT: got %v", z.Time)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	wantValue(t, "2025-05-04 9:30 AT >TIMESTAMP TIMESTAMP>DATETIME >TIME TIME>STR", Str("09:30"))
	v := runTop(t, "2025-05-04 >TIMESTAMP")
	if v.Tag != VTInt {
		t.Fatalf(">TIMESTAMP: got %s", TagName(v.Tag))
	}
}

func TestDatetimeConversions(t *testing.T) {
	wantValue(t, `"2025-05-04T10:15:00Z" >DATETIME >DATE DATE>STR`, Str("2025-05-04"))
	wantValue(t, `2025-05-04 >DATETIME >TIME TIME>STR`, Str("00:00"))
	wantValue(t, `NULL >DATE`, Null)
}

func TestInterpreterTimezone(t *testing.T) {
	ip := NewStandardInterpreter()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	ip.SetTimezone(loc)
	if err := ip.Run("NOW"); err != nil {
		t.Fatalf("run: %v", err)
	}
	v, _ := ip.Peek()
	if z := v.Data.(ZonedTime); z.Zone != "America/New_York" {
		t.Errorf("zone: got %q", z.Zone)
	}
}
