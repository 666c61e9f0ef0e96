package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	return key
}

func TestEncryptDecrypt(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("secret financial data")

	encrypted, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, encrypted)
	// nonce (12) + ciphertext + auth tag (16)
	assert.Len(t, encrypted, NonceSize+len(plaintext)+16)

	decrypted, err := Decrypt(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncrypt_EmptyPlaintext(t *testing.T) {
	_, err := Encrypt(nil, testKey(t))
	assert.Error(t, err)
}

func TestEncrypt_InvalidKeySize(t *testing.T) {
	_, err := Encrypt([]byte("data"), []byte("short key"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestDecrypt_WrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("data"), testKey(t))
	require.NoError(t, err)

	_, err = Decrypt(encrypted, testKey(t))
	assert.Error(t, err)
}

func TestDecrypt_CorruptedData(t *testing.T) {
	key := testKey(t)
	encrypted, err := Encrypt([]byte("data"), key)
	require.NoError(t, err)

	// Портим один байт шифротекста
	encrypted[len(encrypted)-1] ^= 0xFF

	_, err = Decrypt(encrypted, key)
	assert.Error(t, err)
}

func TestDecrypt_TooShort(t *testing.T) {
	_, err := Decrypt([]byte("short"), testKey(t))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}

func TestCipher_EncryptDecryptJSON(t *testing.T) {
	cipher, err := NewCipher(testKey(t))
	require.NoError(t, err)

	type payload struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	}

	original := payload{Type: "SYNC_REQUEST", Value: -500}

	ciphertext, err := cipher.EncryptJSON(original)
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "SYNC_REQUEST")

	var restored payload
	require.NoError(t, cipher.DecryptJSON(ciphertext, &restored))
	assert.Equal(t, original, restored)
}

func TestCipher_DecryptJSON_ForeignKey(t *testing.T) {
	c1, err := NewCipher(testKey(t))
	require.NoError(t, err)
	c2, err := NewCipher(testKey(t))
	require.NoError(t, err)

	ciphertext, err := c1.EncryptJSON(map[string]string{"a": "b"})
	require.NoError(t, err)

	var out map[string]string
	assert.Error(t, c2.DecryptJSON(ciphertext, &out))
}

func TestNewCipherFromBase64(t *testing.T) {
	key := testKey(t)

	cipher, err := NewCipherFromBase64(ExportKey(key))
	require.NoError(t, err)

	ciphertext, err := cipher.EncryptJSON("ping")
	require.NoError(t, err)

	var out string
	require.NoError(t, cipher.DecryptJSON(ciphertext, &out))
	assert.Equal(t, "ping", out)
}

func TestNewCipherFromBase64_Invalid(t *testing.T) {
	_, err := NewCipherFromBase64("not base64!!!")
	assert.Error(t, err)
}
