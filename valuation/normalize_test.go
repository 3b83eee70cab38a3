package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFlatPayload(t *testing.T) {
	payload := []byte(`{
		"make": "BMW",
		"model": "3 Series",
		"year": 2015,
		"price_med": 22000
	}`)

	d := Normalize(payload)

	assert.Equal(t, "BMW", d.Make)
	assert.Equal(t, "3 Series", d.Model)
	assert.Equal(t, 2015, d.Year)
	assert.Equal(t, 22000, d.BasePrice)
	assert.Equal(t, 13860, d.ReservePrice)
	assert.Equal(t, 13860, d.Valuation)
}

func TestNormalizeUnwrapsDataEnvelope(t *testing.T) {
	payload := []byte(`{"data": {"make": "Audi", "model": "A4", "year": 2018, "price": 30000}}`)

	d := Normalize(payload)

	assert.Equal(t, "Audi", d.Make)
	assert.Equal(t, 30000, d.BasePrice)
	assert.Equal(t, 18900, d.ReservePrice) // 0.37 tier
}

func TestNormalizeDeepNesting(t *testing.T) {
	// make buried three levels down under unrelated wrapper keys, and no
	// top-level make at all.
	payload := []byte(`{
		"functionResponse": {
			"valuation": {
				"calcValuation": {
					"make": "Toyota",
					"model": "Corolla",
					"year": 2019,
					"price_med": 18000
				}
			}
		}
	}`)

	d := Normalize(payload)

	assert.Equal(t, "Toyota", d.Make)
	assert.Equal(t, "Corolla", d.Model)
	assert.Equal(t, 2019, d.Year)
	assert.Equal(t, 18000, d.BasePrice)
	assert.Equal(t, 9720, d.ReservePrice) // 0.46 tier
}

func TestNormalizeAlternateKeys(t *testing.T) {
	d := Normalize([]byte(`{"brand": "BMW"}`))
	assert.Equal(t, "BMW", d.Make)

	d = Normalize([]byte(`{"manufacturer": "Ford", "modelName": "Focus", "productionYear": 2017}`))
	assert.Equal(t, "Ford", d.Make)
	assert.Equal(t, "Focus", d.Model)
	assert.Equal(t, 2017, d.Year)
}

func TestNormalizeStringCoercion(t *testing.T) {
	payload := []byte(`{"make": "BMW", "year": "2015", "price": "22 000"}`)

	d := Normalize(payload)

	assert.Equal(t, 2015, d.Year)
	assert.Equal(t, 22000, d.BasePrice)
	assert.Equal(t, 13860, d.ReservePrice)
}

func TestNormalizeNonNumericPriceIsAbsent(t *testing.T) {
	d := Normalize([]byte(`{"make": "BMW", "price": "call us"}`))

	assert.Equal(t, "BMW", d.Make)
	assert.Zero(t, d.BasePrice)
	assert.Zero(t, d.ReservePrice)
	assert.False(t, d.HasPrice())
}

func TestNormalizeMinMedFallback(t *testing.T) {
	payload := []byte(`{"make": "BMW", "price_min": 20000, "price_med": 24000}`)

	d := Normalize(payload)

	// midpoint of min and med
	assert.Equal(t, 22000, d.BasePrice)
	assert.Equal(t, 13860, d.ReservePrice)
	assert.Equal(t, 13860, d.Valuation)
}

func TestNormalizeExplicitReserveWins(t *testing.T) {
	payload := []byte(`{"basePrice": 30000, "reservePrice": 21000}`)

	d := Normalize(payload)

	assert.Equal(t, 30000, d.BasePrice)
	assert.Equal(t, 21000, d.ReservePrice)
	assert.Equal(t, 21000, d.Valuation)
}

func TestNormalizeWrapperKeyDoesNotShadowFields(t *testing.T) {
	// A "valuation" wrapper object must not be mistaken for a valuation
	// price; the price inside it should still be found.
	payload := []byte(`{"valuation": {"price_med": 16000, "make": "Skoda"}}`)

	d := Normalize(payload)

	assert.Equal(t, "Skoda", d.Make)
	assert.Equal(t, 16000, d.BasePrice)
}

func TestNormalizeGarbage(t *testing.T) {
	for _, payload := range [][]byte{
		nil,
		[]byte(``),
		[]byte(`not json`),
		[]byte(`[1, 2, 3]`),
		[]byte(`{}`),
		[]byte(`{"irrelevant": {"stuff": true}}`),
	} {
		d := Normalize(payload)
		assert.False(t, d.HasIdentity())
		assert.False(t, d.HasPrice())
	}
}

func TestNormalizeReserveNeverExceedsBase(t *testing.T) {
	payloads := [][]byte{
		[]byte(`{"price": 15000}`),
		[]byte(`{"price": 47500}`),
		[]byte(`{"price_med": 90001}`),
		[]byte(`{"price_min": 10000, "price_med": 11000}`),
	}
	for _, payload := range payloads {
		d := Normalize(payload)
		assert.Greater(t, d.ReservePrice, 0)
		assert.LessOrEqual(t, d.ReservePrice, d.BasePrice)
	}
}
