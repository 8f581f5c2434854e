// Package fuzztests houses Go fuzz harnesses for the document pipeline
// (source -> markdown -> emit). They guard against panics, hangs and broken
// positions on arbitrary input.
//
// Назначение: прогонять произвольные байты через парсер и компилятор и
// проверять структурные инварианты из internal/testkit.
//
// Не делает: генерацию страниц бэкендами, запись файлов, выполнение CLI.
package fuzztests
