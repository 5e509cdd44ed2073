package sql

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/typedsql/dialect"
)

func TestDataTypeOf(t *testing.T) {
	tests := []struct {
		spec      string
		name      string
		length    int
		precision int
		scale     int
	}{
		{"integer", "integer", 0, 0, 0},
		{"int4", "integer", 0, 0, 0},
		{"VARCHAR(100)", "varchar", 100, 0, 0},
		{"character varying(20)", "varchar", 20, 0, 0},
		{"timestamp(6) with time zone", "timestamptz", 0, 6, 0},
		{"timestamptz", "timestamptz", 0, 0, 0},
		{"numeric(10,2)", "numeric", 0, 10, 2},
		{"tinyint(1)", "boolean", 0, 0, 0},
		{"text[]", "varchar[]", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			dt, err := DataTypeOf(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.name, dt.Name())
			assert.Equal(t, tt.length, dt.Length())
			assert.Equal(t, tt.precision, dt.Precision())
			assert.Equal(t, tt.scale, dt.Scale())
		})
	}

	_, err := DataTypeOf("geometry")
	require.Error(t, err)
	_, err = DataTypeOf("varchar(abc)")
	require.Error(t, err)
}

func TestDataTypeModifiers(t *testing.T) {
	dt := Integer.NotNull().AsIdentity()
	assert.False(t, dt.Nullable())
	assert.True(t, dt.Identity())
	assert.True(t, Integer.Nullable(), "predefined types are not modified")
	assert.False(t, Integer.Identity())

	created := TimestampTZ.WithPrecision(6).NotNull().WithDefault(Now())
	assert.True(t, created.HasDefault())
	assert.Equal(t, "now()", Inlined(created.Default()))
	assert.True(t, created.Null().Nullable())

	assert.True(t, Varchar.WithLength(100).SameType(Varchar.WithLength(100).NotNull()))
	assert.False(t, Varchar.WithLength(100).Equal(Varchar.WithLength(100).NotNull()))
	assert.False(t, Varchar.WithLength(100).SameType(Varchar.WithLength(50)))
}

func TestDataTypeSQL(t *testing.T) {
	tests := []struct {
		dt      DataType
		dialect string
		want    string
	}{
		{Varchar.WithLength(100), dialect.Postgres, "varchar(100)"},
		{TimestampTZ.WithPrecision(6), dialect.Postgres, "timestamp(6) with time zone"},
		{TimestampTZ, dialect.Postgres, "timestamp with time zone"},
		{Numeric.WithPrecision(10, 2), dialect.Postgres, "numeric(10, 2)"},
		{Integer, dialect.MySQL, "int"},
		{Boolean, dialect.MySQL, "tinyint(1)"},
		{Varchar, dialect.MySQL, "varchar(255)"},
		{UUID, dialect.MySQL, "char(36)"},
		{Integer, dialect.SQLite, "integer"},
		{Varchar.WithLength(100), dialect.SQLite, "text"},
		{TimestampTZ.WithPrecision(6), dialect.SQLite, "timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dt.SQL(tt.dialect))
		})
	}
}

func TestDataTypeConvert(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	id := uuid.New()
	tests := []struct {
		name string
		dt   DataType
		in   any
		want any
	}{
		{"nil", Integer, nil, nil},
		{"int64 to int32", Integer, int64(7), int32(7)},
		{"bytes to int32", Integer, []byte("12"), int32(12)},
		{"int64 to int16", SmallInt, int64(3), int16(3)},
		{"float to int64", BigInt, float64(9), int64(9)},
		{"bytes to string", Varchar, []byte("Mark"), "Mark"},
		{"int to bool", Boolean, int64(1), true},
		{"string to time", Timestamp, "2024-03-01 10:30:00", ts},
		{"rfc3339 to time", TimestampTZ, "2024-03-01T10:30:00Z", ts},
		{"time stays", TimestampTZ, ts, ts},
		{"string to uuid", UUID, id.String(), id},
		{"bytes to uuid", UUID, id[:], id},
		{"text array", VarcharArray, []byte(`{foo,"b,ar"}`), []string{"foo", "b,ar"}},
		{"empty array", VarcharArray, "{}", []string{}},
		{"bytes to numeric", Numeric, []byte("10.50"), "10.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.dt.Convert(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Integer.Convert(int64(1) << 40)
	require.Error(t, err, "overflow")
	_, err = Timestamp.Convert("yesterday")
	require.Error(t, err)
	_, err = Integer.Convert(struct{}{})
	require.Error(t, err)
}
