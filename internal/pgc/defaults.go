package pgc

import (
	"strconv"

	"github.com/silverbooks-dev/silverbooks/internal/model"
)

// DefaultTable returns the built-in PGC classification table for the
// Spanish general chart of accounts. Deployments with a customized chart
// override it with a YAML file via LoadTable.
func DefaultTable() *Table {
	t := &Table{
		subtypes: make(map[int]string),
		balance:  make(map[balanceKey]BalancePlacement),
		pyg:      make(map[int]PygPlacement),
	}

	for sg, name := range defaultSubtypes {
		t.subtypes[sg] = name
	}
	for _, b := range defaultBalance {
		t.balance[balanceKey{b.subgroup, b.accountType}] = b.placement
	}
	for _, p := range defaultPyg {
		t.pyg[p.subgroup] = p.placement
	}
	return t
}

var defaultSubtypes = map[int]string{
	// Grupo 1: Financiación básica
	10: "Capital",
	11: "Reservas y otros instrumentos de patrimonio",
	12: "Resultados pendientes de aplicación",
	13: "Subvenciones, donaciones y ajustes por cambios de valor",
	14: "Provisiones",
	15: "Deudas a largo plazo con características especiales",
	16: "Deudas a largo plazo con partes vinculadas",
	17: "Deudas a largo plazo por préstamos y otros",
	18: "Pasivos por fianzas y garantías a largo plazo",
	19: "Situaciones transitorias de financiación",

	// Grupo 2: Activo no corriente
	20: "Inmovilizaciones intangibles",
	21: "Inmovilizaciones materiales",
	22: "Inversiones inmobiliarias",
	23: "Inmovilizaciones materiales en curso",
	24: "Inversiones financieras en partes vinculadas",
	25: "Otras inversiones financieras a largo plazo",
	26: "Fianzas y depósitos constituidos a largo plazo",
	28: "Amortización acumulada del inmovilizado",
	29: "Deterioro de valor de activos no corrientes",

	// Grupo 3: Existencias
	30: "Comerciales",
	31: "Materias primas",
	32: "Otros aprovisionamientos",
	33: "Productos en curso",
	34: "Productos semiterminados",
	35: "Productos terminados",
	36: "Subproductos, residuos y materiales recuperados",
	39: "Deterioro de valor de las existencias",

	// Grupo 4: Acreedores y deudores
	40: "Proveedores",
	41: "Acreedores varios",
	43: "Clientes",
	44: "Deudores varios",
	46: "Personal",
	47: "Administraciones públicas",
	48: "Ajustes por periodificación",
	49: "Deterioro de valor de créditos comerciales",

	// Grupo 5: Cuentas financieras
	50: "Empréstitos y deudas a corto plazo",
	51: "Deudas a corto plazo con partes vinculadas",
	52: "Deudas a corto plazo por préstamos y otros",
	53: "Inversiones financieras a corto plazo en partes vinculadas",
	54: "Otras inversiones financieras a corto plazo",
	55: "Otras cuentas no bancarias",
	56: "Fianzas y depósitos recibidos y constituidos a corto plazo",
	57: "Tesorería",
	58: "Activos no corrientes mantenidos para la venta",
	59: "Deterioro del valor de inversiones financieras a corto plazo",

	// Grupo 6: Compras y gastos
	60: "Compras",
	61: "Variación de existencias",
	62: "Servicios exteriores",
	63: "Tributos",
	64: "Gastos de personal",
	65: "Otros gastos de gestión",
	66: "Gastos financieros",
	67: "Pérdidas procedentes de activos no corrientes",
	68: "Dotaciones para amortizaciones",
	69: "Pérdidas por deterioro y otras dotaciones",

	// Grupo 7: Ventas e ingresos
	70: "Ventas de mercaderías y producción",
	71: "Variación de existencias",
	73: "Trabajos realizados para la empresa",
	74: "Subvenciones, donaciones y legados",
	75: "Otros ingresos de gestión",
	76: "Ingresos financieros",
	77: "Beneficios procedentes de activos no corrientes",
	79: "Excesos y aplicaciones de provisiones",
}

type defaultBalanceRow struct {
	subgroup    int
	accountType model.AccountType
	placement   BalancePlacement
}

var defaultBalance = []defaultBalanceRow{
	// Activo no corriente
	{20, model.AccountTypeAsset, BalancePlacement{"ACTIVO NO CORRIENTE", "Inmovilizado", "Inmovilizado intangible", "Inmovilizaciones intangibles", 100}},
	{21, model.AccountTypeAsset, BalancePlacement{"ACTIVO NO CORRIENTE", "Inmovilizado", "Inmovilizado material", "Inmovilizaciones materiales", 110}},
	{22, model.AccountTypeAsset, BalancePlacement{"ACTIVO NO CORRIENTE", "Inmovilizado", "Inversiones inmobiliarias", "Inversiones inmobiliarias", 120}},
	{23, model.AccountTypeAsset, BalancePlacement{"ACTIVO NO CORRIENTE", "Inmovilizado", "Inmovilizado material", "Inmovilizaciones en curso", 130}},
	{24, model.AccountTypeAsset, BalancePlacement{"ACTIVO NO CORRIENTE", "Inversiones financieras a largo plazo", "Inversiones en partes vinculadas", "Inversiones en partes vinculadas", 140}},
	{25, model.AccountTypeAsset, BalancePlacement{"ACTIVO NO CORRIENTE", "Inversiones financieras a largo plazo", "Otras inversiones financieras", "Otras inversiones financieras", 150}},
	{26, model.AccountTypeAsset, BalancePlacement{"ACTIVO NO CORRIENTE", "Inversiones financieras a largo plazo", "Fianzas y depósitos", "Fianzas y depósitos a largo plazo", 160}},
	{28, model.AccountTypeAsset, BalancePlacement{"ACTIVO NO CORRIENTE", "Inmovilizado", "Amortización acumulada", "Amortización acumulada", 170}},
	{29, model.AccountTypeAsset, BalancePlacement{"ACTIVO NO CORRIENTE", "Inmovilizado", "Deterioro de valor", "Deterioro de activos no corrientes", 180}},

	// Activo corriente: existencias
	{30, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Existencias", "Comerciales", "Comerciales", 200}},
	{31, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Existencias", "Materias primas", "Materias primas", 210}},
	{32, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Existencias", "Otros aprovisionamientos", "Otros aprovisionamientos", 220}},
	{33, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Existencias", "Productos en curso", "Productos en curso", 230}},
	{34, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Existencias", "Productos semiterminados", "Productos semiterminados", 240}},
	{35, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Existencias", "Productos terminados", "Productos terminados", 250}},
	{36, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Existencias", "Subproductos y residuos", "Subproductos y residuos", 260}},
	{39, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Existencias", "Deterioro de existencias", "Deterioro de existencias", 270}},

	// Activo corriente: deudores
	{43, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Deudores comerciales", "Clientes", "Clientes por ventas", 300}},
	{44, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Deudores comerciales", "Deudores varios", "Deudores varios", 310}},
	{47, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Deudores comerciales", "Administraciones públicas", "Administraciones públicas deudoras", 330}},
	{48, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Deudores comerciales", "Ajustes por periodificación", "Ajustes por periodificación", 340}},
	{49, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Deudores comerciales", "Deterioro de créditos", "Deterioro de créditos comerciales", 350}},

	// Activo corriente: inversiones y tesorería
	{53, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Inversiones financieras a corto plazo", "Inversiones en partes vinculadas", "Inversiones c/p en partes vinculadas", 400}},
	{54, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Inversiones financieras a corto plazo", "Otras inversiones financieras", "Otras inversiones financieras c/p", 410}},
	{58, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Activos mantenidos para la venta", "Activos mantenidos para la venta", "Activos no corrientes en venta", 420}},
	{57, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Efectivo y otros activos líquidos", "Tesorería", "Tesorería", 430}},
	{59, model.AccountTypeAsset, BalancePlacement{"ACTIVO CORRIENTE", "Inversiones financieras a corto plazo", "Deterioro de inversiones", "Deterioro de inversiones c/p", 440}},

	// Patrimonio neto
	{10, model.AccountTypeEquity, BalancePlacement{"PATRIMONIO NETO", "Fondos propios", "Capital", "Capital", 500}},
	{11, model.AccountTypeEquity, BalancePlacement{"PATRIMONIO NETO", "Fondos propios", "Reservas", "Reservas y otros instrumentos", 510}},
	{12, model.AccountTypeEquity, BalancePlacement{"PATRIMONIO NETO", "Fondos propios", "Resultados pendientes", "Resultados pendientes de aplicación", 520}},
	{13, model.AccountTypeEquity, BalancePlacement{"PATRIMONIO NETO", "Subvenciones y ajustes de valor", "Subvenciones y donaciones", "Subvenciones, donaciones y ajustes", 530}},

	// Pasivo no corriente
	{14, model.AccountTypeLiability, BalancePlacement{"PASIVO NO CORRIENTE", "Provisiones a largo plazo", "Provisiones", "Provisiones", 600}},
	{15, model.AccountTypeLiability, BalancePlacement{"PASIVO NO CORRIENTE", "Deudas a largo plazo", "Deudas con características especiales", "Deudas con características especiales", 610}},
	{16, model.AccountTypeLiability, BalancePlacement{"PASIVO NO CORRIENTE", "Deudas a largo plazo", "Deudas con partes vinculadas", "Deudas l/p con partes vinculadas", 620}},
	{17, model.AccountTypeLiability, BalancePlacement{"PASIVO NO CORRIENTE", "Deudas a largo plazo", "Préstamos y otras deudas", "Deudas por préstamos y otros", 630}},
	{18, model.AccountTypeLiability, BalancePlacement{"PASIVO NO CORRIENTE", "Deudas a largo plazo", "Fianzas y garantías", "Pasivos por fianzas a largo plazo", 640}},
	{19, model.AccountTypeLiability, BalancePlacement{"PASIVO NO CORRIENTE", "Deudas a largo plazo", "Situaciones transitorias", "Situaciones transitorias de financiación", 650}},

	// Pasivo corriente
	{40, model.AccountTypeLiability, BalancePlacement{"PASIVO CORRIENTE", "Acreedores comerciales", "Proveedores", "Proveedores", 700}},
	{41, model.AccountTypeLiability, BalancePlacement{"PASIVO CORRIENTE", "Acreedores comerciales", "Acreedores varios", "Acreedores varios", 710}},
	{46, model.AccountTypeLiability, BalancePlacement{"PASIVO CORRIENTE", "Acreedores comerciales", "Personal", "Remuneraciones pendientes de pago", 720}},
	{47, model.AccountTypeLiability, BalancePlacement{"PASIVO CORRIENTE", "Acreedores comerciales", "Administraciones públicas", "Administraciones públicas acreedoras", 730}},
	{50, model.AccountTypeLiability, BalancePlacement{"PASIVO CORRIENTE", "Deudas a corto plazo", "Empréstitos", "Empréstitos y deudas c/p", 740}},
	{51, model.AccountTypeLiability, BalancePlacement{"PASIVO CORRIENTE", "Deudas a corto plazo", "Deudas con partes vinculadas", "Deudas c/p con partes vinculadas", 750}},
	{52, model.AccountTypeLiability, BalancePlacement{"PASIVO CORRIENTE", "Deudas a corto plazo", "Préstamos y otras deudas", "Deudas c/p por préstamos y otros", 760}},
	{55, model.AccountTypeLiability, BalancePlacement{"PASIVO CORRIENTE", "Deudas a corto plazo", "Otras cuentas no bancarias", "Otras cuentas no bancarias", 770}},
	{56, model.AccountTypeLiability, BalancePlacement{"PASIVO CORRIENTE", "Deudas a corto plazo", "Fianzas y depósitos recibidos", "Fianzas y depósitos c/p", 780}},
}

type defaultPygRow struct {
	subgroup  int
	placement PygPlacement
}

var defaultPyg = []defaultPygRow{
	// Gastos de explotación
	{60, PygPlacement{"GASTOS DE EXPLOTACIÓN", "Aprovisionamientos", "Compras", 10}},
	{61, PygPlacement{"GASTOS DE EXPLOTACIÓN", "Aprovisionamientos", "Variación de existencias", 20}},
	{62, PygPlacement{"GASTOS DE EXPLOTACIÓN", "Otros gastos de explotación", "Servicios exteriores", 30}},
	{63, PygPlacement{"GASTOS DE EXPLOTACIÓN", "Otros gastos de explotación", "Tributos", 40}},
	{64, PygPlacement{"GASTOS DE EXPLOTACIÓN", "Gastos de personal", "Gastos de personal", 50}},
	{65, PygPlacement{"GASTOS DE EXPLOTACIÓN", "Otros gastos de explotación", "Otros gastos de gestión", 60}},
	{67, PygPlacement{"GASTOS DE EXPLOTACIÓN", "Resultados por enajenaciones", "Pérdidas de activos no corrientes", 70}},
	{68, PygPlacement{"GASTOS DE EXPLOTACIÓN", "Amortizaciones", "Dotaciones para amortizaciones", 80}},
	{69, PygPlacement{"GASTOS DE EXPLOTACIÓN", "Deterioros", "Pérdidas por deterioro", 90}},

	// Ingresos de explotación
	{70, PygPlacement{"INGRESOS DE EXPLOTACIÓN", "Importe neto de la cifra de negocios", "Ventas", 100}},
	{71, PygPlacement{"INGRESOS DE EXPLOTACIÓN", "Variación de existencias", "Variación de existencias", 110}},
	{73, PygPlacement{"INGRESOS DE EXPLOTACIÓN", "Trabajos para la empresa", "Trabajos realizados para la empresa", 120}},
	{74, PygPlacement{"INGRESOS DE EXPLOTACIÓN", "Subvenciones", "Subvenciones, donaciones y legados", 130}},
	{75, PygPlacement{"INGRESOS DE EXPLOTACIÓN", "Otros ingresos de gestión", "Otros ingresos de gestión", 140}},
	{77, PygPlacement{"INGRESOS DE EXPLOTACIÓN", "Resultados por enajenaciones", "Beneficios de activos no corrientes", 150}},
	{79, PygPlacement{"INGRESOS DE EXPLOTACIÓN", "Provisiones", "Excesos y aplicaciones de provisiones", 160}},

	// Resultado financiero
	{66, PygPlacement{"GASTOS FINANCIEROS", "Gastos financieros", "Gastos financieros", 200}},
	{76, PygPlacement{"INGRESOS FINANCIEROS", "Ingresos financieros", "Ingresos financieros", 300}},
}

func init() {
	// Groups 8 and 9 (items imputed to equity) get generic placements so
	// they classify without gaps even though the PGC names them sparsely.
	for sg := 80; sg <= 89; sg++ {
		defaultPyg = append(defaultPyg, defaultPygRow{sg, PygPlacement{
			Section:  "GASTOS IMPUTADOS AL PATRIMONIO NETO",
			Group:    "Gastos imputados al patrimonio neto",
			Subgroup: "Subgrupo " + strconv.Itoa(sg),
			Order:    400 + (sg - 80),
		}})
	}
	for sg := 90; sg <= 99; sg++ {
		defaultPyg = append(defaultPyg, defaultPygRow{sg, PygPlacement{
			Section:  "INGRESOS IMPUTADOS AL PATRIMONIO NETO",
			Group:    "Ingresos imputados al patrimonio neto",
			Subgroup: "Subgrupo " + strconv.Itoa(sg),
			Order:    500 + (sg - 90),
		}})
	}
}
