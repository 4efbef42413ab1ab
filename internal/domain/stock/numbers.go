package stock

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generadores de números de documento. Formato: prefijo + marca de tiempo +
// fragmento hex aleatorio en mayúsculas, único por construcción.

// GenerateMoveNo número de asiento de movimiento (MV...).
func GenerateMoveNo() string {
	return fmt.Sprintf("MV%s%s", time.Now().Format("20060102150405"), hexFragment(8))
}

// GenerateLockNo número de documento de bloqueo (LK...).
func GenerateLockNo() string {
	return fmt.Sprintf("LK%s%s", time.Now().Format("20060102150405"), hexFragment(8))
}

// GenerateBatchNo número de lote autogenerado cuando la entrada no trae uno (BN...).
func GenerateBatchNo() string {
	return fmt.Sprintf("BN%s%s", time.Now().Format("20060102"), hexFragment(6))
}

func hexFragment(n int) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(hex[:n])
}
