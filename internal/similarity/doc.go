// Package similarity содержит математику сравнения изображений: косинусное сходство
// векторов признаков, индекс структурного сходства (SSIM), взвешенную оценку с порогами
// решения и выбор top-k ближайших векторов галереи.
package similarity
