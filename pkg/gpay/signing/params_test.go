package signing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_SortsKeys(t *testing.T) {
	p := Params{"b": String("2"), "a": String("1")}
	assert.Equal(t, "a=1&b=2", Canonicalize(p))
}

func TestCanonicalize_ByteOrder(t *testing.T) {
	p := Params{
		"b":     String("x"),
		"B":     String("y"),
		"a_b":   String("z"),
		"ab":    String("w"),
		"a":     String("v"),
		"10":    String("u"),
		"9":     String("t"),
		"réel":  String("s"),
		"zebra": String("r"),
	}
	assert.Equal(t, "10=u&9=t&B=y&a=v&a_b=z&ab=w&b=x&réel=s&zebra=r", Canonicalize(p))
}

func TestCanonicalize_CoercionTable(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"Null", Null(), "k="},
		{"False", Bool(false), "k=false"},
		{"True", Bool(true), "k=true"},
		{"IntZero", Int(0), "k=0"},
		{"IntPositive", Int(1718000000123), "k=1718000000123"},
		{"IntNegative", Int(-42), "k=-42"},
		{"EmptyString", String(""), "k="},
		{"StringTrue", String("true"), "k=true"},
		{"Decimal", String("10.50"), "k=10.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(Params{"k": tt.value}))
		})
	}
}

func TestCanonicalize_NoEncoding(t *testing.T) {
	p := Params{"description": String("rent & bills=paid"), "note": String("a b/c?d")}
	assert.Equal(t, "description=rent & bills=paid&note=a b/c?d", Canonicalize(p))
}

func TestCanonicalize_Empty(t *testing.T) {
	assert.Equal(t, "", Canonicalize(Params{}))
	assert.Equal(t, "", Canonicalize(nil))
}

func TestCanonicalize_InsertionOrderIndependent(t *testing.T) {
	keys := []string{"request_timestamp", "amount", "wallet_gateway_id", "description", "reference_no", "is_paid"}
	values := map[string]Value{
		"request_timestamp": String("1718000000123"),
		"amount":            String("25.00"),
		"wallet_gateway_id": String("W-1001"),
		"description":       String(""),
		"reference_no":      Null(),
		"is_paid":           Bool(false),
	}

	var want string
	permute(keys, 0, func(order []string) {
		p := make(Params)
		for _, k := range order {
			p[k] = values[k]
		}
		got := Canonicalize(p)
		if want == "" {
			want = got
		}
		assert.Equal(t, want, got, "order %v", order)
	})
	assert.Equal(t, "amount=25.00&description=&is_paid=false&reference_no=&request_timestamp=1718000000123&wallet_gateway_id=W-1001", want)
}

func permute(keys []string, i int, visit func([]string)) {
	if i == len(keys) {
		visit(append([]string(nil), keys...))
		return
	}
	for j := i; j < len(keys); j++ {
		keys[i], keys[j] = keys[j], keys[i]
		permute(keys, i+1, visit)
		keys[i], keys[j] = keys[j], keys[i]
	}
}

func TestCanonicalize_FalseZeroEmptyDistinct(t *testing.T) {
	asFalse := Canonicalize(Params{"flag": Bool(false)})
	asZero := Canonicalize(Params{"flag": Int(0)})
	asEmpty := Canonicalize(Params{"flag": String("")})

	assert.Equal(t, "flag=false", asFalse)
	assert.Equal(t, "flag=0", asZero)
	assert.Equal(t, "flag=", asEmpty)
	assert.NotEqual(t, asFalse, asZero)
	assert.NotEqual(t, asZero, asEmpty)
	assert.NotEqual(t, asFalse, asEmpty)
}

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want Value
	}{
		{"Nil", nil, Null()},
		{"True", true, Bool(true)},
		{"False", false, Bool(false)},
		{"String", "abc", String("abc")},
		{"IntegerNumber", json.Number("1718000000123"), Int(1718000000123)},
		{"ZeroNumber", json.Number("0"), Int(0)},
		{"DecimalNumber", json.Number("10.50"), String("10.5")},
		{"IntegralDecimal", json.Number("10.0"), Int(10)},
		{"Float64", 2.25, String("2.25")},
		{"LongDecimal", json.Number("3.14159265358979323846"), String("3.1415926535898")},
		{"HugeNumber", json.Number("1e25"), String("1.0E+25")},
		{"BeyondInt64", json.Number("12345678901234567890"), String("1.2345678901235E+19")},
		{"TinyNumber", json.Number("0.00001"), String("1.0E-5")},
		{"SmallDecimal", json.Number("0.0001"), String("0.0001")},
		{"Int", 7, Int(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromJSON_RejectsComposite(t *testing.T) {
	_, err := FromJSON([]interface{}{"a"})
	assert.ErrorIs(t, err, ErrNotScalar)

	_, err = FromJSON(map[string]interface{}{"a": "b"})
	assert.ErrorIs(t, err, ErrNotScalar)
}

func TestParams_JSONKeepsTypes(t *testing.T) {
	p := Params{
		"n": Null(),
		"b": Bool(false),
		"i": Int(0),
		"s": String(""),
	}

	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":null,"b":false,"i":0,"s":""}`, string(body))

	parsed, err := ParseObject(body)
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
	assert.Equal(t, Canonicalize(p), Canonicalize(parsed))
}

func TestParseObject_Errors(t *testing.T) {
	_, err := ParseObject([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseObject([]byte(`null`))
	assert.Error(t, err)

	_, err = ParseObject([]byte(`{"list":[1,2]}`))
	assert.ErrorIs(t, err, ErrNotScalar)
}

func TestSelect(t *testing.T) {
	data := map[string]interface{}{
		"balance":            "100.00",
		"response_timestamp": json.Number("1718000000999"),
		"extra":              "ignored",
	}

	p, err := Select(data, []string{"balance", "response_timestamp", "missing"})
	require.NoError(t, err)

	assert.Equal(t, Params{
		"balance":            String("100.00"),
		"response_timestamp": Int(1718000000999),
		"missing":            Null(),
	}, p)
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`12`), &v))
	assert.Equal(t, Int(12), v)

	require.NoError(t, json.Unmarshal([]byte(`"12"`), &v))
	assert.Equal(t, String("12"), v)

	assert.Error(t, json.Unmarshal([]byte(`{}`), &v))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "null", Null().Kind().String())
	assert.Equal(t, "bool", Bool(true).Kind().String())
	assert.Equal(t, "int", Int(1).Kind().String())
	assert.Equal(t, "string", String("x").Kind().String())
	assert.True(t, Null().IsNull())
	assert.False(t, String("").IsNull())
}
