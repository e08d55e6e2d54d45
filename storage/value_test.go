package storage

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []TypedValue{
		IntValue(0),
		IntValue(-1),
		IntValue(9223372036854775807),
		FloatValue(0),
		FloatValue(-3.5),
		FloatValue(1.0 / 3.0),
		CharValue('a'),
		CharValue('Z'),
		StringValue(""),
		StringValue("hello, world"),
	}

	for _, v := range cases {
		v := v
		t.Run(v.Type.String(), func(t *testing.T) {
			encoded := encode(v)
			got, err := decode(v.Type, bytes.NewReader(encoded))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !got.Equal(v) {
				t.Errorf("round trip: got %v, want %v", got, v)
			}
		})
	}
}

func TestDecodeShortReadIsEndOfStream(t *testing.T) {
	_, err := decode(TypeInt, bytes.NewReader(nil))
	if err == nil {
		t.Fatal("expected error on empty reader")
	}
	if _, ok := err.(*IoError); !ok {
		t.Errorf("expected *IoError, got %T", err)
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encode(IntValue(2))[:8]) // length prefix = 2
	buf.Write([]byte{0xff, 0xfe})      // not valid UTF-8
	_, err := decode(TypeString, &buf)
	if err == nil {
		t.Fatal("expected invalid UTF-8 to fail decode")
	}
}

func TestCoerceIdentity(t *testing.T) {
	cases := []TypedValue{IntValue(7), FloatValue(2.5), CharValue('q'), StringValue("x")}
	for _, v := range cases {
		got, err := coerce(v, v.Type)
		if err != nil {
			t.Fatalf("coerce identity: %v", err)
		}
		if !got.Equal(v) {
			t.Errorf("coerce identity: got %v, want %v", got, v)
		}
	}
}

func TestCoerceMatrix(t *testing.T) {
	cases := []struct {
		name   string
		in     TypedValue
		target DataType
		want   TypedValue
		ok     bool
	}{
		{"int to float", IntValue(3), TypeFloat, FloatValue(3), true},
		{"float to int not allowed", FloatValue(3.5), TypeInt, TypedValue{}, false},
		{"char to int", CharValue('5'), TypeInt, IntValue(5), true},
		{"char to float", CharValue('5'), TypeFloat, FloatValue(5), true},
		{"char to string", CharValue('q'), TypeString, StringValue("q"), true},
		{"char to int invalid", CharValue('q'), TypeInt, TypedValue{}, false},
		{"string to int", StringValue("42"), TypeInt, IntValue(42), true},
		{"string to float", StringValue("1.5"), TypeFloat, FloatValue(1.5), true},
		{"string to char", StringValue("q"), TypeChar, CharValue('q'), true},
		{"string to char multi-rune", StringValue("qq"), TypeChar, TypedValue{}, false},
		{"string to int invalid", StringValue("nope"), TypeInt, TypedValue{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := coerce(tc.in, tc.target)
			if tc.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !got.Equal(tc.want) {
					t.Errorf("got %v, want %v", got, tc.want)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error, got %v", got)
			}
			if _, ok := err.(*InvalidValueError); !ok {
				t.Errorf("expected *InvalidValueError, got %T", err)
			}
		})
	}
}
