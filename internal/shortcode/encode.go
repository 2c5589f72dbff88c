package shortcode

// Alphabet символы base62 в порядке возрастания веса. Порядок менять нельзя.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const base = uint(len(Alphabet))

// maxEncodedLen 62^11 > 2^64, поэтому 11 символов хватает для любого uint.
const maxEncodedLen = 11

// Encode переводит идентификатор в base62 позиционным делением на 62.
//
// Параметры:
//   - id: идентификатор записи, строго больше нуля
//
// Возвращает:
//   - string: короткий код
//   - error: ErrInvalidIdentifier для id == 0
func Encode(id uint) (string, error) {
	if id == 0 {
		return "", ErrInvalidIdentifier
	}

	var buf [maxEncodedLen]byte
	i := len(buf)
	for id > 0 {
		i--
		buf[i] = Alphabet[id%base]
		id /= base
	}
	return string(buf[i:]), nil
}

// MustEncode аналогичен Encode, но паникует на нулевом идентификаторе.
func MustEncode(id uint) string {
	code, err := Encode(id)
	if err != nil {
		panic(err)
	}
	return code
}
